// Package handshake parses TLS ClientHello and ServerHello messages and
// extracts targeted fields — Server Name Indication, supported versions,
// and the selected cipher suite — from their extension lists.
//
// ParseClientHello and ParseServerHello both expect the message body with
// its 4-byte handshake header ([msg_type:u8][length:u24]) still attached;
// callers that have already stripped the outer 5-byte record header pass
// the remaining handshake-message bytes straight through.
package handshake

import (
	"bytes"
	"errors"
)

// Handshake message types this package recognizes.
const (
	TypeClientHello uint8 = 0x01
	TypeServerHello uint8 = 0x02
)

// Extension types recognized by this core.
const (
	ExtServerName        uint16 = 0x0000
	ExtSupportedVersions uint16 = 0x002b
)

var (
	// ErrTruncated indicates the handshake body ended mid-field.
	ErrTruncated = errors.New("handshake: truncated input")

	// ErrBadFormat indicates an internally inconsistent length or an
	// unexpected leading tag byte.
	ErrBadFormat = errors.New("handshake: malformed handshake message")

	// ErrNoSNI indicates the server_name extension is absent or empty.
	ErrNoSNI = errors.New("handshake: no SNI extension present")
)

// ClientHello is the parsed ClientHello message. All variable-length
// fields are owned copies; none alias the caller's buffer.
type ClientHello struct {
	LegacyVersion      uint16
	Random             [32]byte
	SessionID          []byte
	CipherSuites       []byte // raw blob, 2 bytes per entry
	CompressionMethods []byte
	Extensions         []byte // raw blob, decoded on demand by GetSNI / GetSupportedVersions
}

// Equal reports whether two ClientHellos are structurally identical.
func (c *ClientHello) Equal(other *ClientHello) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.LegacyVersion == other.LegacyVersion &&
		c.Random == other.Random &&
		bytes.Equal(c.SessionID, other.SessionID) &&
		bytes.Equal(c.CipherSuites, other.CipherSuites) &&
		bytes.Equal(c.CompressionMethods, other.CompressionMethods) &&
		bytes.Equal(c.Extensions, other.Extensions)
}

// ServerHello is the parsed ServerHello message.
type ServerHello struct {
	LegacyVersion     uint16
	Random            [32]byte
	SessionID         []byte
	CipherSuite       uint16
	CompressionMethod uint8
	Extensions        []byte
}

// Equal reports whether two ServerHellos are structurally identical.
func (s *ServerHello) Equal(other *ServerHello) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.LegacyVersion == other.LegacyVersion &&
		s.Random == other.Random &&
		bytes.Equal(s.SessionID, other.SessionID) &&
		s.CipherSuite == other.CipherSuite &&
		s.CompressionMethod == other.CompressionMethod &&
		bytes.Equal(s.Extensions, other.Extensions)
}
