package keylog

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

var recognizedLabels = map[string]bool{
	LabelClientHandshakeTrafficSecret: true,
	LabelServerHandshakeTrafficSecret: true,
	LabelClientTrafficSecret0:         true,
	LabelServerTrafficSecret0:         true,
	LabelExporterSecret:               true,
}

// entry is one successfully parsed key-log line.
type entry struct {
	label           string
	clientRandomHex string
	secret          []byte
}

// parseLine parses a single key-log line of the form
// "<LABEL> <64-hex client_random> <hex secret>". It returns (nil, false)
// for blank lines, comment lines (leading '#'), and any line this core
// doesn't need to reject outright (fewer than 3 fields, unrecognized
// label, malformed hex) — the key-log format is forward-compatible and
// malformed or unrecognized lines are skipped silently rather than
// failing the whole file.
func parseLine(line string) (entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return entry{}, false
	}

	fields := strings.Fields(line)
	if len(fields) < 3 {
		return entry{}, false
	}

	label := fields[0]
	if !recognizedLabels[label] {
		return entry{}, false
	}

	clientRandomHex := strings.ToLower(fields[1])
	if len(clientRandomHex) != 64 {
		return entry{}, false
	}
	if _, err := hex.DecodeString(clientRandomHex); err != nil {
		return entry{}, false
	}

	secret, err := hex.DecodeString(strings.ToLower(fields[2]))
	if err != nil {
		return entry{}, false
	}
	if len(secret) != 32 && len(secret) != 48 {
		return entry{}, false
	}

	return entry{label: label, clientRandomHex: clientRandomHex, secret: secret}, true
}

// Parse reads every line of r, populating and returning a SecretLog.
// Malformed or unrecognized lines are skipped; duplicate (client_random,
// label) pairs resolve last-write-wins.
func Parse(r io.Reader) (SecretLog, error) {
	log := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		e, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		log.Set(e.clientRandomHex, e.label, e.secret)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("keylog: reading key log: %w", err)
	}
	return log, nil
}

// Load parses the key-log file at path into a SecretLog.
func Load(path string) (SecretLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("keylog: opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// LoadForClientRandom parses the key-log file at path, keeping only
// entries for the given client_random (lowercase 64-hex string).
func LoadForClientRandom(path, clientRandomHex string) (SecretLog, error) {
	full, err := Load(path)
	if err != nil {
		return nil, err
	}

	clientRandomHex = strings.ToLower(clientRandomHex)
	filtered := New()
	if entries, ok := full[clientRandomHex]; ok {
		for label, secret := range entries {
			filtered.Set(clientRandomHex, label, secret)
		}
	}
	return filtered, nil
}
