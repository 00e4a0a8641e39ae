// Package decrypt turns a sequence of TLS 1.3 records plus the matching
// traffic secrets into plaintext, following RFC 8446 §5: construct the
// per-record nonce from the write IV and sequence number, build the
// additional authenticated data from the record header, open the AEAD
// ciphertext, then strip the inner content-type/padding trailer.
package decrypt

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/nicholashanson/tlscore/internal/pkg/decrypt/ciphers"
	"github.com/nicholashanson/tlscore/internal/pkg/kdf"
	"github.com/nicholashanson/tlscore/internal/pkg/keylog"
	"github.com/nicholashanson/tlscore/internal/pkg/tlsrecord"
)

var (
	// ErrUnsupported indicates a TLS version or cipher suite this core
	// does not decrypt (TLS 1.2 record-layer decryption is a non-goal).
	ErrUnsupported = errors.New("decrypt: unsupported TLS version or cipher suite")

	// ErrAeadFailure indicates the AEAD authentication tag failed to
	// verify, or the inner TLS 1.3 plaintext was malformed.
	ErrAeadFailure = errors.New("decrypt: aead authentication failed")

	// ErrCiphertextTooShort indicates a record shorter than the AEAD tag.
	ErrCiphertextTooShort = errors.New("decrypt: ciphertext shorter than authentication tag")
)

const tagSize = 16

// Label identifies which of the four traffic secrets (client or server,
// handshake or application) a stream is being decrypted under.
type Label string

const (
	LabelClientHandshake Label = keylog.LabelClientHandshakeTrafficSecret
	LabelServerHandshake Label = keylog.LabelServerHandshakeTrafficSecret
	LabelClientApp       Label = keylog.LabelClientTrafficSecret0
	LabelServerApp       Label = keylog.LabelServerTrafficSecret0
)

// buildNonce XORs the 12-byte write IV with the big-endian sequence
// number, right-aligned, per RFC 8446 §5.3.
func buildNonce(writeIV []byte, seqNum uint64) []byte {
	nonce := make([]byte, len(writeIV))
	copy(nonce, writeIV)

	seqBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBytes, seqNum)

	ivLen := len(writeIV)
	for i := 0; i < 8; i++ {
		nonce[ivLen-8+i] ^= seqBytes[i]
	}
	return nonce
}

// buildAAD builds the TLS 1.3 additional authenticated data: the 5-byte
// record header with opaque_type fixed to application_data (0x17) and
// legacy_record_version fixed to 0x0303, regardless of the record's
// actual on-the-wire content type — TLS 1.3 always encrypts under this
// header per RFC 8446 §5.2.
func buildAAD(ciphertextLen int) []byte {
	aad := make([]byte, 5)
	aad[0] = tlsrecord.ContentTypeApplicationData
	aad[1] = 0x03
	aad[2] = 0x03
	binary.BigEndian.PutUint16(aad[3:5], uint16(ciphertextLen))
	return aad
}

// stripInnerPadding recovers the true content type and content from a
// TLS 1.3 inner plaintext: content || content_type || zero-padding. The
// content type is the last non-zero byte.
func stripInnerPadding(plaintext []byte) (content []byte, contentType uint8, err error) {
	i := len(plaintext) - 1
	for i >= 0 && plaintext[i] == 0 {
		i--
	}
	if i < 0 {
		return nil, 0, fmt.Errorf("%w: inner plaintext is all zero padding", ErrAeadFailure)
	}
	return plaintext[:i], plaintext[i], nil
}

func newAEAD(cs kdf.CipherSuite, key []byte) (ciphers.AEAD, error) {
	switch cs.ID {
	case kdf.TLS_AES_128_GCM_SHA256.ID, kdf.TLS_AES_256_GCM_SHA384.ID:
		return ciphers.NewAESGCM(key)
	case kdf.TLS_CHACHA20_POLY1305_SHA256.ID:
		return ciphers.NewChaCha20Poly1305(key)
	default:
		return nil, ErrUnsupported
	}
}

// DecryptRecord opens a single TLS 1.3 record under the traffic secret
// identified by (clientRandomHex, label) in log, using cipherSuiteID's
// key schedule, at sequence number seqNum. It returns the recovered
// inner record, carrying its true content type and the plaintext payload.
//
// serverRandomHex is carried for parity with the session identity (a
// client_random/server_random pair) even though the NSS key-log format
// keys every secret by client_random alone, so lookup never consults it.
//
// tlsVersion is the caller's already-resolved protocol version for this
// session, not a record's legacy_version field, which TLS 1.3 always
// sets to 0x0303 regardless of what was actually negotiated (RFC 8446
// §5.1). A caller that has not yet resolved the negotiated version from
// the ServerHello's supported_versions extension should not call this
// function.
func DecryptRecord(clientRandomHex, serverRandomHex string, tlsVersion uint16, cipherSuiteID uint16, log keylog.SecretLog, label Label, seqNum uint64, record tlsrecord.Record) (tlsrecord.Record, error) {
	if tlsVersion != tlsrecord.VersionTLS13 {
		return tlsrecord.Record{}, fmt.Errorf("%w: tls version 0x%04x is not TLS 1.3 (TLS 1.2 decryption is a non-goal; detection only)", ErrUnsupported, tlsVersion)
	}

	cs, err := kdf.LookupCipherSuite(cipherSuiteID)
	if err != nil {
		return tlsrecord.Record{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	secret, err := log.Get(clientRandomHex, string(label))
	if err != nil {
		return tlsrecord.Record{}, err
	}

	km := kdf.DeriveKeyIV(cs, secret)

	aead, err := newAEAD(cs, km.Key)
	if err != nil {
		return tlsrecord.Record{}, err
	}

	if len(record.Payload) < tagSize {
		return tlsrecord.Record{}, ErrCiphertextTooShort
	}

	nonce := buildNonce(km.IV, seqNum)
	aad := buildAAD(len(record.Payload))

	plaintext, err := aead.Open(nonce, record.Payload, aad)
	if err != nil {
		return tlsrecord.Record{}, fmt.Errorf("%w: %v", ErrAeadFailure, err)
	}

	content, contentType, err := stripInnerPadding(plaintext)
	if err != nil {
		return tlsrecord.Record{}, err
	}

	return tlsrecord.Record{
		ContentType: contentType,
		Version:     record.Version,
		Payload:     content,
	}, nil
}

// RecordResult is the outcome of decrypting one record in a stream: the
// recovered record on success, or the error that stopped decryption for
// that record.
type RecordResult struct {
	Record tlsrecord.Record
	Err    error
}

// DecryptStream decrypts a sequence of TLS 1.3 records carrying the same
// traffic secret, advancing the AEAD sequence number only for
// application_data records. Records of any other content type (such as
// ChangeCipherSpec, a TLS 1.3 compatibility artifact — RFC 8446 §5.1)
// pass through unchanged without consuming a sequence number. A record that fails to decrypt
// does not stop the stream; its RecordResult carries the error and the
// sequence counter still advances, matching real capture behavior where
// one corrupted record shouldn't blind the rest of the session.
func DecryptStream(clientRandomHex, serverRandomHex string, tlsVersion uint16, cipherSuiteID uint16, log keylog.SecretLog, label Label, records []tlsrecord.Record) []RecordResult {
	results := make([]RecordResult, 0, len(records))
	var seqNum uint64

	for _, record := range records {
		if record.ContentType != tlsrecord.ContentTypeApplicationData {
			results = append(results, RecordResult{Record: record})
			continue
		}

		decrypted, err := DecryptRecord(clientRandomHex, serverRandomHex, tlsVersion, cipherSuiteID, log, label, seqNum, record)
		seqNum++
		if err != nil {
			results = append(results, RecordResult{Err: err})
			continue
		}
		results = append(results, RecordResult{Record: decrypted})
	}

	return results
}

// DecryptStreamStrict behaves like DecryptStream but stops and returns
// the partial results plus the error at the first record that fails to
// decrypt, for callers that would rather abort than risk interpreting a
// stream after losing synchronization with the sender's sequence number.
func DecryptStreamStrict(clientRandomHex, serverRandomHex string, tlsVersion uint16, cipherSuiteID uint16, log keylog.SecretLog, label Label, records []tlsrecord.Record) ([]tlsrecord.Record, error) {
	out := make([]tlsrecord.Record, 0, len(records))
	var seqNum uint64

	for _, record := range records {
		if record.ContentType != tlsrecord.ContentTypeApplicationData {
			out = append(out, record)
			continue
		}

		decrypted, err := DecryptRecord(clientRandomHex, serverRandomHex, tlsVersion, cipherSuiteID, log, label, seqNum, record)
		seqNum++
		if err != nil {
			return out, err
		}
		out = append(out, decrypted)
	}

	return out, nil
}
