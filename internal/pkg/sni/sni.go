// Package sni builds an index from TLS server_name values to the IP
// address that carried the handshake requesting them — the piece of
// passive TLS visibility that survives even when a session can't be
// decrypted.
package sni

import (
	"net/netip"

	"github.com/nicholashanson/tlscore/internal/pkg/handshake"
	"github.com/nicholashanson/tlscore/internal/pkg/tlsrecord"
)

// Map associates a hostname seen in a ClientHello's server_name
// extension with the destination IP address the carrying packet was
// addressed to.
type Map map[string]netip.Addr

// Packet is the minimal shape GetSNIToIP needs from a captured packet:
// its TLS record-layer payload and the IP address it was sent to. A real
// caller's packet type carries far more (ports, timestamps, flow
// identity); only these two fields matter here.
type Packet struct {
	Payload []byte
	DstIP   netip.Addr
}

// GetSNIToIP scans packets for ClientHello messages, extracts each
// one's server_name, and maps it to the packet's destination IP.
// Packets that aren't a recognizable ClientHello, or whose ClientHello
// carries no server_name extension, are skipped rather than treated as
// fatal — a passive observer sees plenty of non-handshake traffic.
// Duplicate hostnames resolve last-write-wins, consistent with
// keylog.SecretLog's duplicate-entry policy.
func GetSNIToIP(packets []Packet) Map {
	result := make(Map)

	for _, pkt := range packets {
		if !handshake.IsTLSPayload(pkt.Payload) {
			continue
		}

		record := tlsrecord.Record{
			ContentType: pkt.Payload[0],
			Version:     uint16(pkt.Payload[1])<<8 | uint16(pkt.Payload[2]),
			Payload:     pkt.Payload[tlsrecord.HeaderSize:],
		}
		if !handshake.IsClientHello(&record) {
			continue
		}

		hello, err := handshake.ParseClientHello(record.Payload)
		if err != nil {
			continue
		}

		host, err := handshake.GetSNI(hello)
		if err != nil {
			continue
		}

		result[host] = pkt.DstIP
	}

	return result
}
