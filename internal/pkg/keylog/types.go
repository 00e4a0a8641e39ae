// Package keylog parses and indexes TLS secrets from an NSS
// SSLKEYLOGFILE-format key log, the out-of-band input that lets a passive
// observer decrypt a captured TLS session.
package keylog

import "errors"

// Labels recognized by this core. Other labels (e.g. 0-RTT secrets) may
// appear in a real key log but are outside this core's scope and are
// skipped during parsing.
const (
	LabelClientHandshakeTrafficSecret = "CLIENT_HANDSHAKE_TRAFFIC_SECRET"
	LabelServerHandshakeTrafficSecret = "SERVER_HANDSHAKE_TRAFFIC_SECRET"
	LabelClientTrafficSecret0         = "CLIENT_TRAFFIC_SECRET_0"
	LabelServerTrafficSecret0         = "SERVER_TRAFFIC_SECRET_0"
	LabelExporterSecret               = "EXPORTER_SECRET"
)

// requiredLabels is the set of labels a session needs to be considered
// fully decryptable (spec's "complete" key entry).
var requiredLabels = [...]string{
	LabelClientHandshakeTrafficSecret,
	LabelServerHandshakeTrafficSecret,
	LabelClientTrafficSecret0,
	LabelServerTrafficSecret0,
	LabelExporterSecret,
}

// ErrMissingSecret indicates the requested (client_random, label) pair is
// not present in the log.
var ErrMissingSecret = errors.New("keylog: missing secret")

// SecretLog is the two-level mapping client_random (64-hex-char lowercase
// string) -> label -> secret bytes.
type SecretLog map[string]map[string][]byte

// New returns an empty SecretLog.
func New() SecretLog {
	return make(SecretLog)
}

// Set records secret under (clientRandomHex, label), overwriting any
// prior value — duplicate (client_random, label) pairs resolve
// last-write-wins.
func (l SecretLog) Set(clientRandomHex, label string, secret []byte) {
	entries, ok := l[clientRandomHex]
	if !ok {
		entries = make(map[string][]byte)
		l[clientRandomHex] = entries
	}
	entries[label] = secret
}

// Get returns the secret for (clientRandomHex, label), or ErrMissingSecret
// if absent.
func (l SecretLog) Get(clientRandomHex, label string) ([]byte, error) {
	entries, ok := l[clientRandomHex]
	if !ok {
		return nil, ErrMissingSecret
	}
	secret, ok := entries[label]
	if !ok {
		return nil, ErrMissingSecret
	}
	return secret, nil
}

// IsComplete reports whether all five recognized labels are present for
// clientRandomHex — used only to decide whether a session is fully
// decryptable, not to gate individual lookups.
func (l SecretLog) IsComplete(clientRandomHex string) bool {
	entries, ok := l[clientRandomHex]
	if !ok {
		return false
	}
	for _, label := range requiredLabels {
		if _, ok := entries[label]; !ok {
			return false
		}
	}
	return true
}
