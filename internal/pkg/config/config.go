// Package config reads the handful of settings a host application wires
// into the decryptor/keylog-watcher boundary. Core operations take plain
// Go values and never see a viper handle directly — viper stays strictly
// a boundary concern.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// DecryptConfig holds the settings that govern how the key-log watcher
// and session bookkeeping around it behave.
type DecryptConfig struct {
	// KeylogPath is the path to the NSS SSLKEYLOGFILE to tail.
	KeylogPath string

	// MaxSessionsLogged caps how many distinct client_random sessions a
	// host application keeps live bookkeeping for at once.
	MaxSessionsLogged int

	// SessionTTL bounds how long a session's secrets are considered
	// relevant after its last observed activity.
	SessionTTL time.Duration
}

const (
	defaultMaxSessionsLogged = 10000
	defaultSessionTTL        = 30 * time.Minute
)

// LoadDecryptConfig reads tls.keylog_path, tls.max_sessions_logged, and
// tls.session_ttl from v, applying defaults for anything unset.
func LoadDecryptConfig(v *viper.Viper) DecryptConfig {
	v.SetDefault("tls.max_sessions_logged", defaultMaxSessionsLogged)
	v.SetDefault("tls.session_ttl", defaultSessionTTL)

	return DecryptConfig{
		KeylogPath:        v.GetString("tls.keylog_path"),
		MaxSessionsLogged: v.GetInt("tls.max_sessions_logged"),
		SessionTTL:        v.GetDuration("tls.session_ttl"),
	}
}
