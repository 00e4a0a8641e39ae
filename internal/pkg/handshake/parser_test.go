package handshake

import (
	"encoding/binary"
	"testing"

	"github.com/nicholashanson/tlscore/internal/pkg/tlsrecord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSNIExtension builds a server_name extension body for hostname.
func buildSNIExtension(hostname string) []byte {
	entry := append([]byte{0x00}, u16(uint16(len(hostname)))...)
	entry = append(entry, hostname...)
	list := append(u16(uint16(len(entry))), entry...)
	return list
}

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func buildExtensionEntry(extType uint16, data []byte) []byte {
	out := append(u16(extType), u16(uint16(len(data)))...)
	return append(out, data...)
}

// buildClientHelloBody builds a full ClientHello handshake message
// (including the 4-byte handshake header) carrying the given extension
// entries (already type+len+data framed).
func buildClientHelloBody(extensionEntries []byte) []byte {
	random := make([]byte, 32)
	for i := range random {
		random[i] = byte(i)
	}

	body := append([]byte{}, u16(0x0303)...) // legacy client version
	body = append(body, random...)
	body = append(body, 0x00) // empty session_id
	body = append(body, u16(2)...)
	body = append(body, 0x13, 0x01) // one cipher suite
	body = append(body, 0x01, 0x00) // one compression method (null)
	body = append(body, u16(uint16(len(extensionEntries)))...)
	body = append(body, extensionEntries...)

	msg := []byte{TypeClientHello, 0x00, 0x00, 0x00}
	msg[1] = byte(len(body) >> 16)
	msg[2] = byte(len(body) >> 8)
	msg[3] = byte(len(body))
	return append(msg, body...)
}

func TestParseClientHello_SNIPresent(t *testing.T) {
	sniEntry := buildExtensionEntry(ExtServerName, buildSNIExtension("example.com"))
	data := buildClientHelloBody(sniEntry)

	hello, err := ParseClientHello(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0303), hello.LegacyVersion)
	assert.Empty(t, hello.SessionID)
	assert.Equal(t, []byte{0x13, 0x01}, hello.CipherSuites)

	sni, err := GetSNI(hello)
	require.NoError(t, err)
	assert.Equal(t, "example.com", sni)
}

func TestParseClientHello_SNIRemovedYieldsNoSNI(t *testing.T) {
	// Extensions blob present but empty -> no server_name entry at all.
	data := buildClientHelloBody(nil)

	hello, err := ParseClientHello(data)
	require.NoError(t, err)

	_, err = GetSNI(hello)
	assert.ErrorIs(t, err, ErrNoSNI)
}

func TestParseClientHello_WrongMessageType(t *testing.T) {
	data := buildClientHelloBody(nil)
	data[0] = TypeServerHello

	_, err := ParseClientHello(data)
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestParseClientHello_Truncated(t *testing.T) {
	data := buildClientHelloBody(nil)
	truncated := data[:len(data)-5]

	_, err := ParseClientHello(truncated)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestParseServerHello_RoundTrip(t *testing.T) {
	random := make([]byte, 32)
	for i := range random {
		random[i] = byte(0xFF - i)
	}

	body := append([]byte{}, u16(0x0303)...)
	body = append(body, random...)
	body = append(body, 0x00) // empty session_id
	body = append(body, 0x13, 0x01)
	body = append(body, 0x00) // compression method
	body = append(body, u16(0)...)

	msg := []byte{TypeServerHello, 0x00, 0x00, byte(len(body))}
	data := append(msg, body...)

	hello, err := ParseServerHello(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0303), hello.LegacyVersion)
	assert.Equal(t, uint16(0x1301), hello.CipherSuite)
	assert.Equal(t, uint8(0x00), hello.CompressionMethod)
	assert.Equal(t, random, hello.Random[:])
}

func TestEqual(t *testing.T) {
	sniEntry := buildExtensionEntry(ExtServerName, buildSNIExtension("a.com"))
	a, err := ParseClientHello(buildClientHelloBody(sniEntry))
	require.NoError(t, err)
	b, err := ParseClientHello(buildClientHelloBody(sniEntry))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	c, err := ParseClientHello(buildClientHelloBody(nil))
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
}

func TestIsClientHelloIsServerHello(t *testing.T) {
	chBody := buildClientHelloBody(nil)
	record := &tlsrecord.Record{ContentType: tlsrecord.ContentTypeHandshake, Payload: chBody}
	assert.True(t, IsClientHello(record))
	assert.False(t, IsServerHello(record))

	alert := &tlsrecord.Record{ContentType: tlsrecord.ContentTypeAlert, Payload: chBody}
	assert.False(t, IsClientHello(alert))
}

func TestIsTLSPayload(t *testing.T) {
	valid := []byte{0x16, 0x03, 0x03, 0x00, 0x10}
	assert.True(t, IsTLSPayload(valid))

	tooShort := []byte{0x16, 0x03}
	assert.False(t, IsTLSPayload(tooShort))

	badType := []byte{0x99, 0x03, 0x03, 0x00, 0x01}
	assert.False(t, IsTLSPayload(badType))

	badLength := []byte{0x16, 0x03, 0x03, 0xFF, 0xFF}
	assert.False(t, IsTLSPayload(badLength))
}

func TestGetSupportedVersions(t *testing.T) {
	sv := buildExtensionEntry(ExtSupportedVersions, append([]byte{0x02}, u16(0x0304)...))
	versions, err := GetSupportedVersions(sv)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0304}, versions)

	versions, err = GetSupportedVersions(nil)
	require.NoError(t, err)
	assert.Nil(t, versions)
}
