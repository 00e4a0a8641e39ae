package handshake

import "github.com/nicholashanson/tlscore/internal/pkg/tlsrecord"

// IsClientHello reports whether record carries a ClientHello: its
// content type must be Handshake and its first payload byte 0x01.
func IsClientHello(record *tlsrecord.Record) bool {
	return record != nil &&
		record.ContentType == tlsrecord.ContentTypeHandshake &&
		len(record.Payload) >= 1 &&
		record.Payload[0] == TypeClientHello
}

// IsServerHello reports whether record carries a ServerHello: its
// content type must be Handshake and its first payload byte 0x02.
func IsServerHello(record *tlsrecord.Record) bool {
	return record != nil &&
		record.ContentType == tlsrecord.ContentTypeHandshake &&
		len(record.Payload) >= 1 &&
		record.Payload[0] == TypeServerHello
}

// IsTLSPayload is a heuristic used only to distinguish TLS from arbitrary
// TCP at stream-open time; it is never authoritative. It checks that the
// first byte is a plausible content type, the next two bytes are a
// plausible version, and the length field is within bounds.
func IsTLSPayload(data []byte) bool {
	if len(data) < tlsrecord.HeaderSize {
		return false
	}

	switch data[0] {
	case tlsrecord.ContentTypeChangeCipherSpec, tlsrecord.ContentTypeAlert,
		tlsrecord.ContentTypeHandshake, tlsrecord.ContentTypeApplicationData:
	default:
		return false
	}

	if data[1] != 0x03 {
		return false
	}

	length := int(data[3])<<8 | int(data[4])
	return length <= tlsrecord.MaxLength
}
