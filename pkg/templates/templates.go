package templates

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/legion-battalions/pkg/engine"
)

// Placeholders substituted in template names
const (
	PlaceholderCiv    = "{civ}"
	PlaceholderNative = "{native}"
)

// ClassList is a list of identity classes. In YAML it is either a sequence
// or a single whitespace separated string ("Infantry Melee Spearman").
type ClassList []string

// UnmarshalYAML accepts both list forms
func (c *ClassList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*c = strings.Fields(value.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*c = list
		return nil
	default:
		return fmt.Errorf("line %d: class list must be a string or a sequence", value.Line)
	}
}

// Has reports whether the list contains class
func (c ClassList) Has(class string) bool {
	for _, v := range c {
		if v == class {
			return true
		}
	}
	return false
}

// Identity holds civ and class membership
type Identity struct {
	Civ     string    `yaml:"civ"`
	Classes ClassList `yaml:"classes"`
}

// Attack describes one attack type of a unit
type Attack struct {
	MinRange          float64   `yaml:"min_range"`
	MaxRange          float64   `yaml:"max_range"` // -1 for unbounded
	PreferredClasses  ClassList `yaml:"preferred_classes,omitempty"`
	RestrictedClasses ClassList `yaml:"restricted_classes,omitempty"`
}

// Range returns the attack range band
func (a Attack) Range() engine.Range {
	return engine.Range{Min: a.MinRange, Max: a.MaxRange}
}

// Footprint is the obstruction around an entity used when picking spawn points
type Footprint struct {
	Radius       float64 `yaml:"radius"`
	SpawnSpacing float64 `yaml:"spawn_spacing"`
}

// Health of a unit
type Health struct {
	MaxHitpoints int `yaml:"max_hitpoints"`
}

// Battalion configures a leader entity that spawns and leads member units
type Battalion struct {
	NumberOfUnits          int    `yaml:"number_of_units"`
	SpawnFormationTemplate string `yaml:"spawn_formation_template"`
	TemplateName           string `yaml:"template_name"`
	LeaderTemplateName     string `yaml:"leader_template_name"`
}

// BattalionMember marks units that can belong to a battalion
type BattalionMember struct{}

// Formation configures a formation controller entity
type Formation struct {
	Width   int     `yaml:"width"`   // members per rank
	Spacing float64 `yaml:"spacing"` // distance between ranks and files
}

// FormationAttack configures formation level attacking
type FormationAttack struct {
	CanAttackAsFormation bool `yaml:"can_attack_as_formation"`
}

// Template is one entity template. Absent sections mean the component is absent.
type Template struct {
	Name string `yaml:"-"`

	Identity        *Identity                    `yaml:"identity,omitempty"`
	Attack          map[engine.AttackType]Attack `yaml:"attack,omitempty"`
	Footprint       *Footprint                   `yaml:"footprint,omitempty"`
	Health          *Health                      `yaml:"health,omitempty"`
	Battalion       *Battalion                   `yaml:"battalion,omitempty"`
	BattalionMember *BattalionMember             `yaml:"battalion_member,omitempty"`
	Formation       *Formation                   `yaml:"formation,omitempty"`
	FormationAttack *FormationAttack             `yaml:"formation_attack,omitempty"`
}

// AttackTypes returns the attack types of the template in name order
func (t *Template) AttackTypes() []engine.AttackType {
	types := make([]engine.AttackType, 0, len(t.Attack))
	for at := range t.Attack {
		types = append(types, at)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ResolveName substitutes the civ placeholders of a template name
func ResolveName(name, ownerCiv, nativeCiv string) string {
	return strings.NewReplacer(PlaceholderCiv, ownerCiv, PlaceholderNative, nativeCiv).Replace(name)
}

// HasPlaceholder reports whether name still needs civ substitution
func HasPlaceholder(name string) bool {
	return strings.Contains(name, PlaceholderCiv) || strings.Contains(name, PlaceholderNative)
}
