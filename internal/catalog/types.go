package catalog

import (
	"github.com/acinsight/querygate/internal/model"
)

// Indicator is one entry in the semantic dictionary: a named business metric
// with its synonyms, underlying fields, sensitivity level, and canonical
// formula. Immutable after catalog load.
type Indicator struct {
	Key           string      `yaml:"key" json:"key"`
	Name          string      `yaml:"name" json:"name"`
	Synonyms      []string    `yaml:"synonyms" json:"synonyms"`
	Fields        []string    `yaml:"fields" json:"fields"`
	Level         model.Level `yaml:"level" json:"level"`
	Formula       string      `yaml:"formula" json:"formula"`
	DenialMessage string      `yaml:"denial_message" json:"denial_message,omitempty"`
}

// Dimension is a grouping axis the generator may slice indicators by.
type Dimension struct {
	Name   string   `yaml:"name" json:"name"`
	Values []string `yaml:"values" json:"values"`
}

// Rules carries the global calculation and security rule text handed to the
// SQL generator as part of its system prompt.
type Rules struct {
	Calculation string `yaml:"calculation" json:"calculation"`
	Security    string `yaml:"security" json:"security"`
}

// Dictionary is the loaded semantic dictionary. It is read-only after Load;
// concurrent evaluations share one instance without locking.
type Dictionary struct {
	Version    string      `yaml:"version" json:"version"`
	Indicators []Indicator `yaml:"indicators" json:"indicators"`
	Dimensions []Dimension `yaml:"dimensions" json:"dimensions"`
	Rules      Rules       `yaml:"rules" json:"rules"`

	byKey map[string]*Indicator
}

// index builds the key lookup table. Called once at load time.
func (d *Dictionary) index() {
	d.byKey = make(map[string]*Indicator, len(d.Indicators))
	for i := range d.Indicators {
		d.byKey[d.Indicators[i].Key] = &d.Indicators[i]
	}
}

// Indicator returns the definition for key, if present.
func (d *Dictionary) Indicator(key string) (*Indicator, bool) {
	ind, ok := d.byKey[key]
	return ind, ok
}

// FieldOwners returns every indicator whose field set contains field.
func (d *Dictionary) FieldOwners(field string) []*Indicator {
	var owners []*Indicator
	for i := range d.Indicators {
		for _, f := range d.Indicators[i].Fields {
			if f == field {
				owners = append(owners, &d.Indicators[i])
				break
			}
		}
	}
	return owners
}

// AllFields returns the distinct underlying fields across all indicators,
// in catalog order. The slice is freshly allocated per call.
func (d *Dictionary) AllFields() []string {
	seen := make(map[string]bool)
	var fields []string
	for _, ind := range d.Indicators {
		for _, f := range ind.Fields {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return fields
}
