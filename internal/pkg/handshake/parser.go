package handshake

import (
	"fmt"

	"github.com/nicholashanson/tlscore/internal/pkg/wire"
)

// ParseClientHello parses a ClientHello handshake message. data must
// include the 4-byte handshake header ([msg_type=0x01][length:u24])
// followed by the ClientHello body.
func ParseClientHello(data []byte) (*ClientHello, error) {
	c := wire.NewCursor(data)

	msgType, err := c.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("%w: reading handshake type: %v", ErrTruncated, err)
	}
	if msgType != TypeClientHello {
		return nil, fmt.Errorf("%w: expected ClientHello (0x01), got 0x%02x", ErrBadFormat, msgType)
	}
	if _, err := c.ReadU24(); err != nil {
		return nil, fmt.Errorf("%w: reading handshake length: %v", ErrTruncated, err)
	}

	version, err := c.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("%w: reading client_version: %v", ErrTruncated, err)
	}

	random, err := c.ReadBytes(32)
	if err != nil {
		return nil, fmt.Errorf("%w: reading random: %v", ErrTruncated, err)
	}

	sessionID, err := c.ReadVecU8()
	if err != nil {
		return nil, fmt.Errorf("%w: reading session_id: %v", ErrTruncated, err)
	}
	if len(sessionID) > 32 {
		return nil, fmt.Errorf("%w: session_id longer than 32 bytes", ErrBadFormat)
	}

	cipherSuites, err := c.ReadVecU16()
	if err != nil {
		return nil, fmt.Errorf("%w: reading cipher_suites: %v", ErrTruncated, err)
	}
	if len(cipherSuites)%2 != 0 {
		return nil, fmt.Errorf("%w: cipher_suites length not a multiple of 2", ErrBadFormat)
	}

	compression, err := c.ReadVecU8()
	if err != nil {
		return nil, fmt.Errorf("%w: reading compression_methods: %v", ErrTruncated, err)
	}

	extensions, err := c.ReadVecU16()
	if err != nil {
		return nil, fmt.Errorf("%w: reading extensions: %v", ErrTruncated, err)
	}

	hello := &ClientHello{
		LegacyVersion:      version,
		SessionID:          sessionID,
		CipherSuites:       cipherSuites,
		CompressionMethods: compression,
		Extensions:         extensions,
	}
	copy(hello.Random[:], random)
	return hello, nil
}

// ParseServerHello parses a ServerHello handshake message, analogous to
// ParseClientHello but with a single selected cipher suite and
// compression method in place of the ClientHello's offered lists.
func ParseServerHello(data []byte) (*ServerHello, error) {
	c := wire.NewCursor(data)

	msgType, err := c.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("%w: reading handshake type: %v", ErrTruncated, err)
	}
	if msgType != TypeServerHello {
		return nil, fmt.Errorf("%w: expected ServerHello (0x02), got 0x%02x", ErrBadFormat, msgType)
	}
	if _, err := c.ReadU24(); err != nil {
		return nil, fmt.Errorf("%w: reading handshake length: %v", ErrTruncated, err)
	}

	version, err := c.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("%w: reading server_version: %v", ErrTruncated, err)
	}

	random, err := c.ReadBytes(32)
	if err != nil {
		return nil, fmt.Errorf("%w: reading random: %v", ErrTruncated, err)
	}

	sessionID, err := c.ReadVecU8()
	if err != nil {
		return nil, fmt.Errorf("%w: reading session_id: %v", ErrTruncated, err)
	}
	if len(sessionID) > 32 {
		return nil, fmt.Errorf("%w: session_id longer than 32 bytes", ErrBadFormat)
	}

	cipherSuite, err := c.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("%w: reading cipher_suite: %v", ErrTruncated, err)
	}

	compressionMethod, err := c.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("%w: reading compression_method: %v", ErrTruncated, err)
	}

	extensions, err := c.ReadVecU16()
	if err != nil {
		return nil, fmt.Errorf("%w: reading extensions: %v", ErrTruncated, err)
	}

	hello := &ServerHello{
		LegacyVersion:     version,
		SessionID:         sessionID,
		CipherSuite:       cipherSuite,
		CompressionMethod: compressionMethod,
		Extensions:        extensions,
	}
	copy(hello.Random[:], random)
	return hello, nil
}
