package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/yildizdb/yildiz-go/transport"
)

// File is the top-level structure of a profile file.
type File struct {
	// DefaultProfile names the profile used when none is requested
	DefaultProfile string `yaml:"defaultProfile"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"logLevel"`

	// Profiles maps a name to a server and tenant
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile describes one server and tenant. Empty fields fall back to the
// transport defaults.
type Profile struct {
	Proto            string `yaml:"proto"`
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	Prefix           string `yaml:"prefix"`
	Token            string `yaml:"token"`
	DisableKeepAlive bool   `yaml:"disableKeepAlive"`
	EnableTimings    bool   `yaml:"enableTimings"`
	TimeoutMs        int    `yaml:"timeoutMs"`
}

// TransportConfig converts the profile to a transport configuration.
func (p Profile) TransportConfig() transport.Config {
	return transport.Config{
		Prefix:                 p.Prefix,
		AuthToken:              p.Token,
		Proto:                  p.Proto,
		Host:                   p.Host,
		Port:                   p.Port,
		DisableConnectionReuse: p.DisableKeepAlive,
		EnableTimings:          p.EnableTimings,
		DefaultTimeout:         time.Duration(p.TimeoutMs) * time.Millisecond,
	}
}

// Profile returns the named profile. An empty name selects DefaultProfile,
// or the only profile when the file defines exactly one.
func (f *File) Profile(name string) (Profile, error) {
	if name == "" {
		name = f.DefaultProfile
	}
	if name == "" && len(f.Profiles) == 1 {
		for only := range f.Profiles {
			name = only
		}
	}
	if name == "" {
		return Profile{}, fmt.Errorf("no profile selected and no defaultProfile set (have: %v)", f.ProfileNames())
	}

	profile, ok := f.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found (have: %v)", name, f.ProfileNames())
	}
	return profile, nil
}

// ProfileNames returns the defined profile names in sorted order.
func (f *File) ProfileNames() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
