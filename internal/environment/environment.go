// Package environment holds the settings the coffee shop frontend reads at startup
package environment

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AuthConfig describes the authentication tenant. The values are handed
// verbatim to the auth client library when it is initialized.
type AuthConfig struct {
	URL         string `json:"url" koanf:"url" validate:"required,hostname_rfc1123"`
	Audience    string `json:"audience" koanf:"audience" validate:"required"`
	ClientID    string `json:"clientId" koanf:"clientId" validate:"required"`
	CallbackURL string `json:"callbackURL" koanf:"callbackURL" validate:"required,url"`
}

type Environment struct {
	Production   bool       `json:"production" koanf:"production"`
	APIServerURL string     `json:"apiServerUrl" koanf:"apiServerUrl" validate:"required,url"`
	Auth         AuthConfig `json:"auth" koanf:"auth"`
}

var current = Environment{
	Production:   false,
	APIServerURL: "http://127.0.0.1:5000",
	Auth: AuthConfig{
		URL:         "noradai.us.auth0.com",
		Audience:    "cafe",
		ClientID:    "t7RGJnCXEnNpnT089mCPx6XKPrSmqGmR",
		CallbackURL: "https://localhost:8100",
	},
}

var snapshot = mustIndex(current)

// Index answers dotted-key reads against one flattened Environment.
type Index struct {
	k *koanf.Koanf
}

func NewIndex(env Environment) (*Index, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(env, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to flatten environment: %w", err)
	}

	return &Index{k: k}, nil
}

func mustIndex(env Environment) *Index {
	idx, err := NewIndex(env)
	if err != nil {
		panic(err)
	}

	return idx
}

// Keys returns the dotted keys of every field, sorted.
func (i *Index) Keys() []string {
	return i.k.Keys()
}

// Get returns the value of a leaf key. Nested keys such as "auth" are not
// values and report false.
func (i *Index) Get(key string) (any, bool) {
	if !i.k.Exists(key) {
		return nil, false
	}

	v := i.k.Get(key)
	if _, nested := v.(map[string]any); nested {
		return nil, false
	}

	return v, true
}

// Current returns a copy of the environment snapshot.
func Current() Environment {
	return current
}

// Keys returns the dotted keys of every field of the snapshot, sorted.
func Keys() []string {
	return snapshot.Keys()
}

// Get looks up a single snapshot value by dotted key, e.g. "auth.audience".
func Get(key string) (any, bool) {
	return snapshot.Get(key)
}

// Endpoint joins path onto the API server base URL.
func (e Environment) Endpoint(path string) string {
	base := strings.TrimRight(e.APIServerURL, "/")
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return base
	}

	return base + "/" + path
}
