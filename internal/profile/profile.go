// Package profile resolves the white-label client profile used to
// personalize outreach. Profiles live in a YAML file keyed by client key;
// unrecognized keys fall back to the default profile.
package profile

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Profile is one client's outreach identity.
type Profile struct {
	CompanyName    string `yaml:"company_name"`
	Industry       string `yaml:"industry"`
	PainPointFocus string `yaml:"pain_point_focus"`
	TrustLink      string `yaml:"trust_link"`
}

// defaultProfile answers for any client key without a configured profile.
var defaultProfile = Profile{
	CompanyName:    "DBAI",
	Industry:       "AI Automation",
	PainPointFocus: "missed leads and manual follow-up",
	TrustLink:      "https://dbai.example.com/audits",
}

// Registry holds the loaded profiles.
type Registry struct {
	profiles map[string]Profile
}

// Load reads profiles from a YAML file mapping client key to profile. A
// missing path yields an empty registry (every lookup answers the default).
func Load(path string) (*Registry, error) {
	r := &Registry{profiles: map[string]Profile{}}
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		zap.L().Warn("profile: file not found, using default profile only",
			zap.String("path", path))
		return r, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "profile: read %s", path)
	}

	if err := yaml.Unmarshal(data, &r.profiles); err != nil {
		return nil, eris.Wrapf(err, "profile: parse %s", path)
	}
	return r, nil
}

// Lookup returns the profile for a client key, or the default when the key
// is unknown.
func (r *Registry) Lookup(clientKey string) Profile {
	if p, ok := r.profiles[clientKey]; ok {
		return p
	}
	return defaultProfile
}
