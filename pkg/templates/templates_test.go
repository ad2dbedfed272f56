package templates

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/legion-battalions/pkg/engine"
)

func TestLoadFile(t *testing.T) {
	set, err := LoadFile("testdata/templates.yaml")
	require.NoError(t, err)

	assert.Equal(t, 5, set.Len())

	spear, err := set.Get("units/athen_infantry_spearman")
	require.NoError(t, err)
	assert.Equal(t, "units/athen_infantry_spearman", spear.Name)
	assert.Equal(t, ClassList{"Infantry", "Melee", "Spearman"}, spear.Identity.Classes)
	assert.NotNil(t, spear.BattalionMember)
	assert.Equal(t, ClassList{"Cavalry", "Infantry"}, spear.Attack[engine.AttackMelee].PreferredClasses)

	archer, err := set.Get("units/athen_infantry_archer")
	require.NoError(t, err)
	assert.Equal(t, ClassList{"Infantry", "Ranged", "Archer"}, archer.Identity.Classes)
	assert.Equal(t, []engine.AttackType{engine.AttackMelee, engine.AttackRanged}, archer.AttackTypes())
	assert.Equal(t, engine.Range{Min: 0, Max: 60}, archer.Attack[engine.AttackRanged].Range())

	leader, err := set.Get("units/athen_battalion_spearmen")
	require.NoError(t, err)
	require.NotNil(t, leader.Battalion)
	assert.Equal(t, 6, leader.Battalion.NumberOfUnits)
	assert.Equal(t, "formations/box", leader.Battalion.SpawnFormationTemplate)
	assert.Nil(t, leader.BattalionMember)

	box, err := set.Get("formations/box")
	require.NoError(t, err)
	assert.Equal(t, 4, box.Formation.Width)
	assert.False(t, box.FormationAttack.CanAttackAsFormation)
}

func TestGetUnknownTemplate(t *testing.T) {
	set := NewSet()
	_, err := set.Get("units/nobody")
	assert.True(t, errors.Is(err, ErrUnknownTemplate))
}

func TestResolveName(t *testing.T) {
	assert.Equal(t, "units/spart_infantry", ResolveName("units/{civ}_infantry", "spart", "athen"))
	assert.Equal(t, "units/athen_infantry", ResolveName("units/{native}_infantry", "spart", "athen"))
	assert.Equal(t, "units/plain", ResolveName("units/plain", "spart", "athen"))
	assert.True(t, HasPlaceholder("units/{civ}_x"))
	assert.False(t, HasPlaceholder("units/x"))
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "negative unit count",
			doc: `
templates:
  f: {formation: {width: 1}}
  u: {}
  b: {battalion: {number_of_units: -1, spawn_formation_template: f, template_name: u}}`,
		},
		{
			name: "missing formation template",
			doc: `
templates:
  u: {}
  b: {battalion: {number_of_units: 2, spawn_formation_template: nope, template_name: u}}`,
		},
		{
			name: "spawn formation without formation section",
			doc: `
templates:
  u: {}
  b: {battalion: {number_of_units: 2, spawn_formation_template: u, template_name: u}}`,
		},
		{
			name: "unknown member template",
			doc: `
templates:
  f: {formation: {width: 1}}
  b: {battalion: {number_of_units: 2, spawn_formation_template: f, template_name: ghost}}`,
		},
		{
			name: "max below min",
			doc: `
templates:
  u: {attack: {Melee: {min_range: 5, max_range: 2}}}`,
		},
		{
			name: "formation attack without formation",
			doc: `
templates:
  f: {formation_attack: {can_attack_as_formation: true}}`,
		},
		{
			name: "zero formation width",
			doc: `
templates:
  f: {formation: {width: 0}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestUnboundedRangeIsValid(t *testing.T) {
	set, err := Parse([]byte(`
templates:
  siege: {attack: {Ranged: {min_range: 10, max_range: -1}}}`))
	require.NoError(t, err)

	siege, err := set.Get("siege")
	require.NoError(t, err)
	assert.False(t, siege.Attack[engine.AttackRanged].Range().Bounded())
}

func TestClassListRejectsMapping(t *testing.T) {
	_, err := Parse([]byte(`
templates:
  u: {identity: {classes: {a: b}}}`))
	assert.Error(t, err)
}
