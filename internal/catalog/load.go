package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/acinsight/querygate/internal/model"
)

// LoadError reports why a catalog could not be loaded. The engine must not
// serve requests without a loaded catalog, so callers treat this as fatal.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("catalog %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads and validates a semantic dictionary from a YAML file.
// Unlike optional config files there is no fallback: a missing or malformed
// catalog is a hard error.
func Load(path string) (*Dictionary, error) {
	d, _, err := LoadWithHash(path)
	return d, err
}

// LoadWithHash loads a catalog and returns the SHA-256 of the raw bytes,
// recorded in audit entries so decisions are traceable to a catalog version.
func LoadWithHash(path string) (*Dictionary, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &LoadError{Path: path, Reason: "read failed", Err: err}
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	d, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.Path = path
			return nil, "", le
		}
		return nil, "", &LoadError{Path: path, Reason: "parse failed", Err: err}
	}
	return d, hash, nil
}

// Parse unmarshals and validates catalog YAML.
func Parse(data []byte) (*Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, &LoadError{Reason: "unparsable YAML", Err: err}
	}
	if err := validate(&d); err != nil {
		return nil, err
	}
	d.index()
	return &d, nil
}

func validate(d *Dictionary) error {
	if len(d.Indicators) == 0 {
		return &LoadError{Reason: "no indicators defined"}
	}
	seen := make(map[string]bool, len(d.Indicators))
	for _, ind := range d.Indicators {
		switch {
		case ind.Key == "":
			return &LoadError{Reason: fmt.Sprintf("indicator %q missing key", ind.Name)}
		case ind.Name == "":
			return &LoadError{Reason: fmt.Sprintf("indicator %q missing name", ind.Key)}
		case len(ind.Fields) == 0:
			return &LoadError{Reason: fmt.Sprintf("indicator %q has no fields", ind.Key)}
		case seen[ind.Key]:
			return &LoadError{Reason: fmt.Sprintf("duplicate indicator key %q", ind.Key)}
		}
		if !model.ValidLevel(string(ind.Level)) {
			return &LoadError{Reason: fmt.Sprintf("indicator %q has missing or invalid level %q", ind.Key, ind.Level)}
		}
		seen[ind.Key] = true
	}
	return nil
}
