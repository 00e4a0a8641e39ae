package handshake

import (
	"fmt"

	"github.com/nicholashanson/tlscore/internal/pkg/wire"
)

// extensionMap decodes a raw extensions blob into type -> data, scanning
// entries of the form [ext_type:u16][ext_data_len:u16][ext_data].
// Malformed trailing bytes (fewer than 4 left but nonzero) are reported
// as ErrBadFormat; a cleanly empty blob decodes to an empty map.
func extensionMap(extensions []byte) (map[uint16][]byte, error) {
	c := wire.NewCursor(extensions)
	out := make(map[uint16][]byte)

	for c.Len() > 0 {
		if c.Len() < 4 {
			return nil, fmt.Errorf("%w: trailing bytes too short for an extension header", ErrBadFormat)
		}
		extType, err := c.ReadU16()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
		}
		extData, err := c.ReadVecU16()
		if err != nil {
			return nil, fmt.Errorf("%w: extension 0x%04x data: %v", ErrBadFormat, extType, err)
		}
		out[extType] = extData
	}

	return out, nil
}

// GetSNI scans a ClientHello's extensions for server_name (0x0000) and
// returns the first host_name (name_type=0) entry as UTF-8. Returns
// ErrNoSNI if the extension is absent or carries no host_name entry, and
// ErrBadFormat if the extension is malformed.
func GetSNI(hello *ClientHello) (string, error) {
	exts, err := extensionMap(hello.Extensions)
	if err != nil {
		return "", err
	}

	body, ok := exts[ExtServerName]
	if !ok {
		return "", ErrNoSNI
	}

	c := wire.NewCursor(body)
	listBody, err := c.ReadVecU16()
	if err != nil {
		return "", fmt.Errorf("%w: server_name list: %v", ErrBadFormat, err)
	}

	lc := wire.NewCursor(listBody)
	for lc.Len() > 0 {
		nameType, err := lc.ReadU8()
		if err != nil {
			return "", fmt.Errorf("%w: server_name entry type: %v", ErrBadFormat, err)
		}
		name, err := lc.ReadVecU16()
		if err != nil {
			return "", fmt.Errorf("%w: server_name entry value: %v", ErrBadFormat, err)
		}
		if nameType == 0 {
			return string(name), nil
		}
	}

	return "", ErrNoSNI
}

// GetSupportedVersions decodes the supported_versions extension (0x002b)
// from a ClientHello's extensions, returning the list of offered
// versions in wire order. Returns ErrNoSNI-analogous absence as (nil,
// nil) — supported_versions is optional and its absence is not an error.
func GetSupportedVersions(extensions []byte) ([]uint16, error) {
	exts, err := extensionMap(extensions)
	if err != nil {
		return nil, err
	}

	body, ok := exts[ExtSupportedVersions]
	if !ok {
		return nil, nil
	}

	c := wire.NewCursor(body)
	list, err := c.ReadVecU8()
	if err != nil {
		return nil, fmt.Errorf("%w: supported_versions list: %v", ErrBadFormat, err)
	}
	if len(list)%2 != 0 {
		return nil, fmt.Errorf("%w: supported_versions list length not a multiple of 2", ErrBadFormat)
	}

	versions := make([]uint16, 0, len(list)/2)
	lc := wire.NewCursor(list)
	for lc.Len() > 0 {
		v, err := lc.ReadU16()
		if err != nil {
			return nil, fmt.Errorf("%w: supported_versions entry: %v", ErrBadFormat, err)
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// GetServerSupportedVersion decodes the supported_versions extension from
// a ServerHello, which — unlike the ClientHello's list — carries exactly
// one selected version. Returns (0, nil) if the extension is absent.
func GetServerSupportedVersion(extensions []byte) (uint16, error) {
	exts, err := extensionMap(extensions)
	if err != nil {
		return 0, err
	}

	body, ok := exts[ExtSupportedVersions]
	if !ok {
		return 0, nil
	}
	if len(body) < 2 {
		return 0, fmt.Errorf("%w: supported_versions body too short", ErrBadFormat)
	}

	c := wire.NewCursor(body)
	v, err := c.ReadU16()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return v, nil
}

// GetSelectedCipherSuite returns the ServerHello's negotiated cipher
// suite. It is a direct field, not an extension, but exposed here
// alongside the other targeted extractors per spec.
func GetSelectedCipherSuite(hello *ServerHello) uint16 {
	return hello.CipherSuite
}
