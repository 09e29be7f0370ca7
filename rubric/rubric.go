/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMultiplier scales raw criterion points for presentation.
const DefaultMultiplier = 4

// ReservedPrefix marks document keys that are not criterion names.
const ReservedPrefix = "_"

//go:embed crisis_counseling.yaml
var defaultRubric []byte

// ScaleEntry is one discrete score a judge may select for a criterion.
type ScaleEntry struct {
	Score int    `yaml:"score" json:"score"`
	Label string `yaml:"label" json:"label"`
}

// Criterion is a single question within a category.
type Criterion struct {
	Name     string       `yaml:"name"`
	Question string       `yaml:"question"`
	Weight   int          `yaml:"weight"`
	Scale    []ScaleEntry `yaml:"scale"`
}

// Category groups criteria that are scored together.
type Category struct {
	Name     string      `yaml:"name"`
	Criteria []Criterion `yaml:"criteria"`
}

// Band maps a minimum percentage to a qualitative label.
type Band struct {
	Min   float64 `yaml:"min"`
	Label string  `yaml:"label"`
}

// Rubric is the versioned, read-only definition transcripts are scored against.
// A Rubric returned by Parse, Load or Default is never mutated and is safe
// to share across goroutines.
type Rubric struct {
	Version    string     `yaml:"version"`
	Multiplier int        `yaml:"multiplier"`
	Bands      []Band     `yaml:"bands"`
	Categories []Category `yaml:"categories"`

	index map[string]Criterion
}

// Parse decodes a YAML rubric definition and validates it.
func Parse(data []byte) (*Rubric, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var r Rubric
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding rubric: %w", err)
	}
	if r.Multiplier == 0 {
		r.Multiplier = DefaultMultiplier
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid rubric %q: %w", r.Version, err)
	}

	r.index = make(map[string]Criterion, len(r.Criteria()))
	for _, c := range r.Criteria() {
		r.index[c.Name] = c
	}
	return &r, nil
}

// Load reads and parses the rubric definition at path.
func Load(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rubric: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded crisis-counseling rubric.
func Default() *Rubric {
	r, err := Parse(defaultRubric)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Rubric) validate() error {
	var errs []error
	if r.Multiplier < 0 {
		errs = append(errs, fmt.Errorf("multiplier must be positive, got %d", r.Multiplier))
	}
	if len(r.Categories) == 0 {
		errs = append(errs, errors.New("no categories defined"))
	}

	seen := make(map[string]struct{})
	for _, cat := range r.Categories {
		if cat.Name == "" {
			errs = append(errs, errors.New("category with empty name"))
		}
		if len(cat.Criteria) == 0 {
			errs = append(errs, fmt.Errorf("category %q has no criteria", cat.Name))
		}
		for _, c := range cat.Criteria {
			if err := c.validate(); err != nil {
				errs = append(errs, err)
			}
			if _, dup := seen[c.Name]; dup {
				errs = append(errs, fmt.Errorf("duplicate criterion %q", c.Name))
			}
			seen[c.Name] = struct{}{}
		}
	}

	if len(r.Bands) == 0 {
		errs = append(errs, errors.New("no bands defined"))
	}
	for i, b := range r.Bands {
		if b.Label == "" {
			errs = append(errs, fmt.Errorf("band %d has an empty label", i))
		}
		if i > 0 && b.Min >= r.Bands[i-1].Min {
			errs = append(errs, fmt.Errorf("band %q must have a lower minimum than %q", b.Label, r.Bands[i-1].Label))
		}
	}
	return errors.Join(errs...)
}

func (c Criterion) validate() error {
	switch {
	case c.Name == "":
		return errors.New("criterion with empty name")
	case strings.HasPrefix(c.Name, ReservedPrefix):
		return fmt.Errorf("criterion %q uses reserved prefix %q", c.Name, ReservedPrefix)
	case c.Weight < 1:
		return fmt.Errorf("criterion %q: weight must be positive, got %d", c.Name, c.Weight)
	case len(c.Scale) < 2:
		return fmt.Errorf("criterion %q: scale needs at least 2 entries, got %d", c.Name, len(c.Scale))
	}
	scores := make(map[int]struct{}, len(c.Scale))
	for _, e := range c.Scale {
		if e.Label == "" {
			return fmt.Errorf("criterion %q: score %d has an empty label", c.Name, e.Score)
		}
		if _, dup := scores[e.Score]; dup {
			return fmt.Errorf("criterion %q: duplicate score %d", c.Name, e.Score)
		}
		scores[e.Score] = struct{}{}
	}
	return nil
}

// Criteria returns every criterion in rubric order.
func (r *Rubric) Criteria() []Criterion {
	var out []Criterion
	for _, cat := range r.Categories {
		out = append(out, cat.Criteria...)
	}
	return out
}

// Names returns every criterion name in rubric order.
func (r *Rubric) Names() []string {
	crit := r.Criteria()
	names := make([]string, 0, len(crit))
	for _, c := range crit {
		names = append(names, c.Name)
	}
	return names
}

// Lookup returns the criterion with the given name.
func (r *Rubric) Lookup(name string) (Criterion, bool) {
	c, ok := r.index[name]
	return c, ok
}

// Band returns the label of the first band whose minimum the percentage meets.
// Percentages below every minimum fall into the last band.
func (r *Rubric) Band(percentage float64) string {
	for _, b := range r.Bands {
		if percentage >= b.Min {
			return b.Label
		}
	}
	return r.Bands[len(r.Bands)-1].Label
}

// HasScore reports whether score is in the criterion's scale.
func (c Criterion) HasScore(score int) bool {
	_, ok := c.LabelFor(score)
	return ok
}

// LabelFor returns the scale label for score.
func (c Criterion) LabelFor(score int) (string, bool) {
	for _, e := range c.Scale {
		if e.Score == score {
			return e.Label, true
		}
	}
	return "", false
}

// Lowest returns the scale entry with the smallest score.
func (c Criterion) Lowest() ScaleEntry {
	low := c.Scale[0]
	for _, e := range c.Scale[1:] {
		if e.Score < low.Score {
			low = e
		}
	}
	return low
}
