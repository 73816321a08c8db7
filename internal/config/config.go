// Package config holds the daemon settings, read from TTYPROXY_*
// environment variables.
package config

import "github.com/kelseyhightower/envconfig"

// Settings is the daemon configuration. The default-shell tag is
// deliberately not named SHELL: envconfig also looks up the bare tag
// name, and an empty value here is what lets spawn fall back to shell
// autodetection.
type Settings struct {
	SocketPath string `envconfig:"SOCKET" default:"/run/ttyproxy/ctl.sock"`
	Shell      string `envconfig:"DEFAULT_SHELL" default:""`
}

// Load reads Settings from the environment.
func Load() (Settings, error) {
	var s Settings
	if err := envconfig.Process("TTYPROXY", &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
