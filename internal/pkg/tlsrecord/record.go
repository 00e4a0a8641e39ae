// Package tlsrecord segments a reassembled TCP payload stream into TLS
// records (5-byte header plus payload), handling record boundaries that
// straddle underlying TCP segments.
package tlsrecord

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Content types a TLS record header may carry.
const (
	ContentTypeChangeCipherSpec uint8 = 0x14
	ContentTypeAlert            uint8 = 0x15
	ContentTypeHandshake        uint8 = 0x16
	ContentTypeApplicationData  uint8 = 0x17
)

// HeaderSize is the fixed size of a TLS record header on the wire.
const HeaderSize = 5

// Protocol versions as they appear in a ClientHello/ServerHello's
// legacy_version field or a negotiated session's resolved version. TLS
// 1.3 record headers always carry VersionTLS12 for middlebox
// compatibility (RFC 8446 §5.1); the real negotiated version is signaled
// out-of-band via the supported_versions extension.
const (
	VersionSSL30 uint16 = 0x0300
	VersionTLS10 uint16 = 0x0301
	VersionTLS11 uint16 = 0x0302
	VersionTLS12 uint16 = 0x0303
	VersionTLS13 uint16 = 0x0304
)

// MaxLength is the largest record length field this module accepts
// (2^14 + 2048, per spec §4.2 — generous enough to cover both the
// plaintext 2^14 bound and the encrypted 2^14+256 bound with margin for
// intermediary middleboxes that pad further).
const MaxLength = 1<<14 + 2048

var (
	// ErrBadContentType indicates a record header's content type byte is
	// outside {0x14..0x17}. Fatal for the containing direction: framing
	// is lost once a header can't be trusted.
	ErrBadContentType = errors.New("tlsrecord: invalid content type")

	// ErrBadLength indicates a record header declares a length exceeding
	// MaxLength.
	ErrBadLength = errors.New("tlsrecord: length exceeds maximum")
)

// Record is a single TLS record: a tagged container of content type,
// legacy record version, and an owned payload buffer.
type Record struct {
	ContentType uint8
	Version     uint16
	Payload     []byte
}

func isValidContentType(ct uint8) bool {
	switch ct {
	case ContentTypeChangeCipherSpec, ContentTypeAlert, ContentTypeHandshake, ContentTypeApplicationData:
		return true
	default:
		return false
	}
}

// SplitRecords repeatedly parses 5-byte record headers out of buf,
// returning every fully-contained record and the offset up to which buf
// was consumed. The caller retains buf[consumed:] — the unconsumed tail —
// and prepends it to the next segment's bytes before calling again, since
// record framing may straddle TCP segments.
//
// A malformed header (bad content type or over-length) is fatal: parsing
// stops immediately and the error is returned alongside the records
// parsed so far. An incomplete trailing record is not an error — it
// simply isn't included in the returned records, and consumed points at
// its first byte.
func SplitRecords(buf []byte) (records []Record, consumed int, err error) {
	pos := 0
	for {
		if len(buf)-pos < HeaderSize {
			break
		}

		contentType := buf[pos]
		if !isValidContentType(contentType) {
			return records, pos, fmt.Errorf("%w: 0x%02x at offset %d", ErrBadContentType, contentType, pos)
		}

		version := binary.BigEndian.Uint16(buf[pos+1 : pos+3])
		length := int(binary.BigEndian.Uint16(buf[pos+3 : pos+5]))
		if length > MaxLength {
			return records, pos, fmt.Errorf("%w: %d at offset %d", ErrBadLength, length, pos)
		}

		if len(buf)-pos < HeaderSize+length {
			// Incomplete record; stop here and let the caller retain
			// the tail starting at pos for the next segment.
			break
		}

		payload := make([]byte, length)
		copy(payload, buf[pos+HeaderSize:pos+HeaderSize+length])

		records = append(records, Record{
			ContentType: contentType,
			Version:     version,
			Payload:     payload,
		})

		pos += HeaderSize + length
	}

	return records, pos, nil
}

// ExtractRecords concatenates payloads (one per underlying TCP segment)
// and splits the result into records. hasRemainder is true iff some
// trailing bytes were not part of a fully-contained record.
func ExtractRecords(payloads [][]byte) (records []Record, hasRemainder bool, err error) {
	total := 0
	for _, p := range payloads {
		total += len(p)
	}

	buf := make([]byte, 0, total)
	for _, p := range payloads {
		buf = append(buf, p...)
	}

	records, consumed, err := SplitRecords(buf)
	if err != nil {
		return records, false, err
	}

	return records, consumed < len(buf), nil
}
