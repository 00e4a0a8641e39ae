// Package kdf implements the TLS 1.3 key schedule primitives needed to go
// from a traffic secret (pulled from a key log) to the key and IV an AEAD
// cipher needs: HKDF-Expand-Label as defined in RFC 8446 §7.1.
package kdf

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrUnsupportedCipherSuite indicates a cipher suite ID this core does not
// carry key-schedule metadata for.
var ErrUnsupportedCipherSuite = errors.New("kdf: unsupported cipher suite")

// CipherSuite carries the key-schedule metadata HKDF-Expand-Label needs:
// which hash backs the traffic secret, and how long the derived key and
// IV must be.
type CipherSuite struct {
	ID     uint16
	Name   string
	Hash   func() hash.Hash
	KeyLen int
	IVLen  int
}

// TLS 1.3 AEAD cipher suites. TLS_CHACHA20_POLY1305_SHA256 is carried as
// an enrichment beyond the two suites named in the worked examples: it is
// a standard TLS 1.3 AEAD suite and nothing here excludes it.
var (
	TLS_AES_128_GCM_SHA256       = CipherSuite{ID: 0x1301, Name: "TLS_AES_128_GCM_SHA256", Hash: sha256.New, KeyLen: 16, IVLen: 12}
	TLS_AES_256_GCM_SHA384       = CipherSuite{ID: 0x1302, Name: "TLS_AES_256_GCM_SHA384", Hash: sha512.New384, KeyLen: 32, IVLen: 12}
	TLS_CHACHA20_POLY1305_SHA256 = CipherSuite{ID: 0x1303, Name: "TLS_CHACHA20_POLY1305_SHA256", Hash: sha256.New, KeyLen: 32, IVLen: 12}
)

var cipherSuites = map[uint16]CipherSuite{
	TLS_AES_128_GCM_SHA256.ID:       TLS_AES_128_GCM_SHA256,
	TLS_AES_256_GCM_SHA384.ID:       TLS_AES_256_GCM_SHA384,
	TLS_CHACHA20_POLY1305_SHA256.ID: TLS_CHACHA20_POLY1305_SHA256,
}

// LookupCipherSuite returns the CipherSuite for id, or ErrUnsupportedCipherSuite.
func LookupCipherSuite(id uint16) (CipherSuite, error) {
	cs, ok := cipherSuites[id]
	if !ok {
		return CipherSuite{}, ErrUnsupportedCipherSuite
	}
	return cs, nil
}

// ExpandLabel implements HKDF-Expand-Label (RFC 8446 §7.1):
//
//	HKDF-Expand-Label(Secret, Label, Context, Length) =
//	    HKDF-Expand(Secret, HkdfLabel, Length)
//
// where HkdfLabel is the struct
//
//	uint16 length = Length;
//	opaque label<7..255> = "tls13 " + Label;
//	opaque context<0..255> = Context;
func ExpandLabel(h func() hash.Hash, secret []byte, label string, context []byte, length int) []byte {
	fullLabel := "tls13 " + label

	hkdfLabel := make([]byte, 0, 2+1+len(fullLabel)+1+len(context))
	lengthField := make([]byte, 2)
	binary.BigEndian.PutUint16(lengthField, uint16(length))
	hkdfLabel = append(hkdfLabel, lengthField...)
	hkdfLabel = append(hkdfLabel, byte(len(fullLabel)))
	hkdfLabel = append(hkdfLabel, fullLabel...)
	hkdfLabel = append(hkdfLabel, byte(len(context)))
	hkdfLabel = append(hkdfLabel, context...)

	reader := hkdf.Expand(h, secret, hkdfLabel)
	out := make([]byte, length)
	if _, err := io.ReadFull(reader, out); err != nil {
		// hkdf.Expand's Read never fails for lengths within 255*HashLen,
		// which always holds for TLS key/IV lengths.
		panic(err)
	}
	return out
}

// KeyMaterial holds a derived write key and IV for one traffic secret.
type KeyMaterial struct {
	Key []byte
	IV  []byte
}

// DeriveKeyIV derives the write key and write IV from a traffic secret:
//
//	[sender]_write_key = HKDF-Expand-Label(Secret, "key", "", key_length)
//	[sender]_write_iv  = HKDF-Expand-Label(Secret, "iv", "", iv_length)
func DeriveKeyIV(cs CipherSuite, trafficSecret []byte) KeyMaterial {
	return KeyMaterial{
		Key: ExpandLabel(cs.Hash, trafficSecret, "key", nil, cs.KeyLen),
		IV:  ExpandLabel(cs.Hash, trafficSecret, "iv", nil, cs.IVLen),
	}
}
