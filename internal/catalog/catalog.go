// Package catalog loads objective and question catalogs from YAML and
// imports them into the store.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/assessor/internal/objectives"
	"github.com/abhisek/assessor/internal/store"
)

// SupportedMajor is the catalog format major version this build reads.
const SupportedMajor = "v1"

// ErrInvalidCatalog wraps every validation failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is a parsed catalog document.
type Catalog struct {
	Version    string          `yaml:"version"`
	Objectives []ObjectiveSpec `yaml:"objectives"`
	Prompts    []PromptSpec    `yaml:"prompts"`
}

// ObjectiveSpec is an objective entry.
type ObjectiveSpec struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Tier          string   `yaml:"tier"`
	Prerequisites []string `yaml:"prerequisites"`
}

// PromptSpec is a question entry.
type PromptSpec struct {
	ID         string  `yaml:"id"`
	Objective  string  `yaml:"objective"`
	Difficulty float64 `yaml:"difficulty"`
	Type       string  `yaml:"type"`
	Text       string  `yaml:"text"`
}

// Summary reports what Import wrote.
type Summary struct {
	Version    string `json:"version"`
	Objectives int    `json:"objectives"`
	Prompts    int    `json:"prompts"`
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog, validates it against the catalog schema,
// checks the format version, and checks cross-references.
func Parse(data []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrInvalidCatalog, err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrInvalidCatalog, err)
	}
	if err := checkVersion(cat.Version); err != nil {
		return nil, err
	}
	if err := objectives.Validate(cat.ObjectiveList()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := cat.checkPrompts(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// ObjectiveList converts the objective entries.
func (c *Catalog) ObjectiveList() []objectives.Objective {
	out := make([]objectives.Objective, len(c.Objectives))
	for i, o := range c.Objectives {
		out[i] = objectives.Objective{
			ID:            o.ID,
			Name:          o.Name,
			Description:   o.Description,
			Tier:          objectives.Tier(o.Tier),
			Prerequisites: o.Prerequisites,
		}
	}
	return out
}

// PromptList converts the question entries.
func (c *Catalog) PromptList() []store.Prompt {
	out := make([]store.Prompt, len(c.Prompts))
	for i, p := range c.Prompts {
		out[i] = store.Prompt{
			ID:             p.ID,
			ObjectiveID:    p.Objective,
			Difficulty:     p.Difficulty,
			AssessmentType: store.AssessmentType(p.Type),
			Text:           p.Text,
		}
	}
	return out
}

func (c *Catalog) checkPrompts() error {
	known := make(map[string]bool, len(c.Objectives))
	for _, o := range c.Objectives {
		known[o.ID] = true
	}
	seen := make(map[string]bool, len(c.Prompts))
	for _, p := range c.Prompts {
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate prompt id %q", ErrInvalidCatalog, p.ID)
		}
		seen[p.ID] = true
		if !known[p.Objective] {
			return fmt.Errorf("%w: prompt %q references unknown objective %q", ErrInvalidCatalog, p.ID, p.Objective)
		}
	}
	return nil
}

func checkVersion(v string) error {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: version %q is not semantic", ErrInvalidCatalog, v)
	}
	if semver.Major(v) != SupportedMajor {
		return fmt.Errorf("%w: version %s unsupported (want %s.x)", ErrInvalidCatalog, v, SupportedMajor)
	}
	return nil
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func catalogSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(schemaJSON), &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://catalog.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}

// validateSchema checks a decoded YAML document. The document is
// round-tripped through JSON so the validator sees JSON types only.
func validateSchema(doc any) error {
	sch, err := catalogSchema()
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := sch.Validate(parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return nil
}

// Import upserts every objective and then every prompt.
func Import(ctx context.Context, cat *Catalog, objs store.ObjectiveRepo, prompts store.PromptRepo) (*Summary, error) {
	for _, o := range cat.ObjectiveList() {
		if err := objs.Upsert(ctx, o); err != nil {
			return nil, err
		}
	}
	for _, p := range cat.PromptList() {
		if err := prompts.Upsert(ctx, p); err != nil {
			return nil, err
		}
	}
	return &Summary{Version: cat.Version, Objectives: len(cat.Objectives), Prompts: len(cat.Prompts)}, nil
}
