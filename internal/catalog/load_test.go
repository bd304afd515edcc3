package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/acinsight/querygate/internal/model"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "semantic_dict.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultYAML(t *testing.T) {
	path := writeCatalog(t, DefaultYAML())

	d, hash, err := LoadWithHash(path)
	if err != nil {
		t.Fatalf("LoadWithHash: %v", err)
	}
	if !strings.HasPrefix(hash, "sha256:") {
		t.Errorf("hash %q missing sha256 prefix", hash)
	}
	if len(d.Indicators) != 5 {
		t.Errorf("expected 5 indicators, got %d", len(d.Indicators))
	}

	ind, ok := d.Indicator("gross_margin")
	if !ok {
		t.Fatal("gross_margin not found")
	}
	if ind.Level != model.LevelRestricted {
		t.Errorf("gross_margin level = %q, want L1", ind.Level)
	}
	if ind.DenialMessage == "" {
		t.Error("gross_margin missing denial message")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing catalog")
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeCatalog(t, "indicators: [not: closed")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadDuplicateKeys(t *testing.T) {
	path := writeCatalog(t, `
indicators:
  - key: a
    name: 指标A
    fields: [x]
    level: L0
  - key: a
    name: 指标B
    fields: [y]
    level: L0
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no indicators", "version: '1'\n", "no indicators"},
		{"missing key", "indicators:\n  - name: x\n    fields: [f]\n    level: L0\n", "missing key"},
		{"missing name", "indicators:\n  - key: x\n    fields: [f]\n    level: L0\n", "missing name"},
		{"no fields", "indicators:\n  - key: x\n    name: x\n    level: L0\n", "no fields"},
		{"bad level", "indicators:\n  - key: x\n    name: x\n    fields: [f]\n    level: L9\n", "invalid level"},
		{"missing level", "indicators:\n  - key: x\n    name: x\n    fields: [f]\n", "invalid level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDefaultDictionary(t *testing.T) {
	d := Default()
	if _, ok := d.Indicator("order_count"); !ok {
		t.Error("order_count missing from default dictionary")
	}
	owners := d.FieldOwners("销售价")
	if len(owners) != 2 {
		t.Errorf("expected 销售价 owned by 2 indicators, got %d", len(owners))
	}
	fields := d.AllFields()
	seen := make(map[string]bool)
	for _, f := range fields {
		if seen[f] {
			t.Errorf("AllFields returned duplicate %q", f)
		}
		seen[f] = true
	}
}

func TestStoreSwapAndReload(t *testing.T) {
	path := writeCatalog(t, DefaultYAML())
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	firstHash := s.Hash()

	// A bad rewrite must not disturb the published catalog.
	if err := os.WriteFile(path, []byte("indicators: ["), 0600); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err == nil {
		t.Fatal("expected reload error for broken catalog")
	}
	if s.Hash() != firstHash {
		t.Error("failed reload replaced the published catalog")
	}
	if _, ok := s.Get().Indicator("gross_margin"); !ok {
		t.Error("published catalog lost gross_margin after failed reload")
	}

	// A valid rewrite swaps atomically.
	updated := strings.Replace(DefaultYAML(), `version: "1.0"`, `version: "1.1"`, 1)
	if err := os.WriteFile(path, []byte(updated), 0600); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s.Hash() == firstHash {
		t.Error("hash unchanged after successful reload")
	}
	if s.Get().Version != "1.1" {
		t.Errorf("version = %q, want 1.1", s.Get().Version)
	}
}
