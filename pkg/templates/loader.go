package templates

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownTemplate is returned when a template name is not in the set
var ErrUnknownTemplate = errors.New("unknown template")

// Set is a collection of named templates
type Set struct {
	templates map[string]*Template
}

type fileFormat struct {
	Templates map[string]*Template `yaml:"templates"`
}

// NewSet creates an empty template set
func NewSet() *Set {
	return &Set{templates: make(map[string]*Template)}
}

// Add registers tpl under name, replacing an existing entry
func (s *Set) Add(name string, tpl *Template) {
	tpl.Name = name
	s.templates[name] = tpl
}

// Get returns the template called name
func (s *Set) Get(name string) (*Template, error) {
	tpl, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return tpl, nil
}

// Has reports whether name is known
func (s *Set) Has(name string) bool {
	_, ok := s.templates[name]
	return ok
}

// Names returns all template names, sorted
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of templates
func (s *Set) Len() int {
	return len(s.templates)
}

// Parse decodes a YAML template document and validates it
func Parse(data []byte) (*Set, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}

	set := NewSet()
	for name, tpl := range doc.Templates {
		if tpl == nil {
			tpl = &Template{}
		}
		set.Add(name, tpl)
	}

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid templates: %w", err)
	}
	return set, nil
}

// LoadFile reads and parses a template file
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading template file: %w", err)
	}
	return Parse(data)
}

// Validate checks every template and the references between them
func (s *Set) Validate() error {
	var errs []error
	for _, name := range s.Names() {
		if err := s.validateTemplate(s.templates[name]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Set) validateTemplate(t *Template) error {
	for at, a := range t.Attack {
		if a.MinRange < 0 {
			return fmt.Errorf("attack %s: min range must not be negative", at)
		}
		if a.MaxRange >= 0 && a.MaxRange < a.MinRange {
			return fmt.Errorf("attack %s: max range must be unbounded (-1) or at least min range", at)
		}
	}

	if f := t.Footprint; f != nil && (f.Radius < 0 || f.SpawnSpacing < 0) {
		return fmt.Errorf("footprint radius and spawn spacing must not be negative")
	}

	if f := t.Formation; f != nil {
		if f.Width < 1 {
			return fmt.Errorf("formation width must be at least 1")
		}
		if f.Spacing < 0 {
			return fmt.Errorf("formation spacing must not be negative")
		}
	}

	if t.FormationAttack != nil && t.Formation == nil {
		return fmt.Errorf("formation_attack requires a formation section")
	}

	if b := t.Battalion; b != nil {
		if b.NumberOfUnits < 0 {
			return fmt.Errorf("battalion number_of_units must be non-negative")
		}
		if b.TemplateName == "" {
			return fmt.Errorf("battalion template_name is required")
		}
		if b.SpawnFormationTemplate == "" {
			return fmt.Errorf("battalion spawn_formation_template is required")
		}
		formation, err := s.Get(b.SpawnFormationTemplate)
		if err != nil {
			return fmt.Errorf("battalion spawn_formation_template: %w", err)
		}
		if formation.Formation == nil {
			return fmt.Errorf("battalion spawn_formation_template %s has no formation section", b.SpawnFormationTemplate)
		}
		if !HasPlaceholder(b.TemplateName) && !s.Has(b.TemplateName) {
			return fmt.Errorf("battalion template_name: %w: %s", ErrUnknownTemplate, b.TemplateName)
		}
	}

	return nil
}
