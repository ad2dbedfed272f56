package battalion

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/picogrid/legion-battalions/pkg/engine"
	"github.com/picogrid/legion-battalions/pkg/templates"
)

const testTemplates = `
templates:
  formations/line:
    formation:
      width: 2
      spacing: 2
    formation_attack:
      can_attack_as_formation: false

  formations/phalanx:
    formation:
      width: 2
      spacing: 2
    formation_attack:
      can_attack_as_formation: true

  formations/bare:
    formation:
      width: 2
      spacing: 2

  targets/cavalry:
    identity:
      classes: Cavalry Horse

  targets/building:
    identity:
      classes: Structure

  units/athen_spearman:
    identity:
      civ: athen
      classes: Infantry Spearman
    attack:
      Melee:
        min_range: 2
        max_range: 5
        preferred_classes: Infantry Cavalry
    battalion_member: {}

  units/athen_swordsman:
    identity:
      civ: athen
      classes: Infantry Swordsman
    attack:
      Melee:
        min_range: 0
        max_range: 8
        preferred_classes: Structure Infantry Horse
    battalion_member: {}

  units/athen_pikeman:
    identity:
      civ: athen
      classes: Infantry Pikeman
    attack:
      Melee:
        min_range: 1
        max_range: 12
        preferred_classes: Cavalry
    battalion_member: {}

  units/athen_slinger:
    identity:
      civ: athen
      classes: Infantry Ranged
    attack:
      Ranged:
        min_range: 3
        max_range: 12
        preferred_classes: Cavalry
    battalion_member: {}

  units/athen_skirmisher:
    identity:
      civ: athen
      classes: Infantry Ranged
    attack:
      Ranged:
        min_range: 1
        max_range: 20
        preferred_classes: Structure
    battalion_member: {}

  units/athen_catapult:
    identity:
      civ: athen
      classes: Siege
    attack:
      Slaughter:
        min_range: 0
        max_range: -1
    battalion_member: {}

  units/athen_peasant:
    identity:
      civ: athen
      classes: Citizen

  units/athen_leader:
    identity:
      civ: athen
      classes: Infantry Leader
    health:
      max_hitpoints: 100
    battalion:
      number_of_units: 4
      spawn_formation_template: formations/line
      template_name: units/{native}_spearman
      leader_template_name: units/athen_leader

  units/athen_peasant_leader:
    identity:
      civ: athen
    battalion:
      number_of_units: 2
      spawn_formation_template: formations/line
      template_name: units/athen_peasant

  units/athen_broken_leader:
    identity:
      civ: athen
    battalion:
      number_of_units: 2
      spawn_formation_template: formations/line
      template_name: units/{native}_missing
`

type fakeUnit struct {
	template   *templates.Template
	pos        engine.Point
	inWorld    bool
	rotation   float64
	owner      engine.PlayerID
	invincible bool
}

// fakeHost is an in-memory engine.Host driving a System the way a world does
type fakeHost struct {
	t     *testing.T
	set   *templates.Set
	sys   *System
	units map[engine.EntityID]*fakeUnit
	next  engine.EntityID

	// spawnPoints bounds the spawn points handed out; negative is unlimited
	spawnPoints int
	spawned     int
	destroyed   []engine.EntityID
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	set, err := templates.Parse([]byte(testTemplates))
	require.NoError(t, err)

	h := &fakeHost{
		t:           t,
		set:         set,
		units:       make(map[engine.EntityID]*fakeUnit),
		spawnPoints: -1,
	}
	h.sys = NewSystem(h)
	return h
}

// spawn creates an entity from template, places it at p and hands it to owner
func (h *fakeHost) spawn(template string, p engine.Point, owner engine.PlayerID) engine.EntityID {
	h.t.Helper()
	ent, err := h.AddEntity(template)
	require.NoError(h.t, err)
	h.JumpTo(ent, p)
	h.SetOwner(ent, owner)
	return ent
}

func (h *fakeHost) AddEntity(name string) (engine.EntityID, error) {
	tpl, err := h.set.Get(name)
	if err != nil {
		return engine.InvalidEntity, err
	}
	h.next++
	h.units[h.next] = &fakeUnit{template: tpl, owner: engine.InvalidPlayer}
	h.sys.InitEntity(h.next, tpl)
	return h.next, nil
}

func (h *fakeHost) DestroyEntity(ent engine.EntityID) {
	if _, ok := h.units[ent]; !ok {
		return
	}
	h.SetOwner(ent, engine.InvalidPlayer)
	h.sys.OnEntityDestroyed(ent)
	delete(h.units, ent)
	h.destroyed = append(h.destroyed, ent)
}

func (h *fakeHost) Exists(ent engine.EntityID) bool {
	_, ok := h.units[ent]
	return ok
}

func (h *fakeHost) PickSpawnPoint(near, ent engine.EntityID) (engine.Point, bool) {
	center, ok := h.Position(near)
	if !ok || (h.spawnPoints >= 0 && h.spawned >= h.spawnPoints) {
		return engine.Point{}, false
	}
	h.spawned++
	return engine.Point{X: center.X + float64(h.spawned), Z: center.Z}, true
}

func (h *fakeHost) Position(ent engine.EntityID) (engine.Point, bool) {
	u, ok := h.units[ent]
	if !ok || !u.inWorld {
		return engine.Point{}, false
	}
	return u.pos, true
}

func (h *fakeHost) JumpTo(ent engine.EntityID, p engine.Point) {
	if u, ok := h.units[ent]; ok {
		u.pos, u.inWorld = p, true
	}
}

func (h *fakeHost) SetYRotation(ent engine.EntityID, angle float64) {
	if u, ok := h.units[ent]; ok {
		u.rotation = angle
	}
}

func (h *fakeHost) Owner(ent engine.EntityID) engine.PlayerID {
	if u, ok := h.units[ent]; ok {
		return u.owner
	}
	return engine.InvalidPlayer
}

func (h *fakeHost) SetOwner(ent engine.EntityID, player engine.PlayerID) {
	u, ok := h.units[ent]
	if !ok || u.owner == player {
		return
	}
	msg := engine.OwnershipChanged{Entity: ent, From: u.owner, To: player}
	u.owner = player
	h.sys.OnOwnershipChanged(msg)
}

func (h *fakeHost) AttackTypes(ent engine.EntityID) ([]engine.AttackType, bool) {
	u, ok := h.units[ent]
	if !ok || len(u.template.Attack) == 0 {
		return nil, false
	}
	return u.template.AttackTypes(), true
}

// BestAttackAgainst returns the first attack type preferring any class of
// target, else the first type
func (h *fakeHost) BestAttackAgainst(ent, target engine.EntityID) (engine.AttackType, bool) {
	types, ok := h.AttackTypes(ent)
	if !ok {
		return "", false
	}
	classes, _ := h.Classes(target)
	for _, at := range types {
		for _, c := range classes {
			if h.units[ent].template.Attack[at].PreferredClasses.Has(c) {
				return at, true
			}
		}
	}
	return types[0], true
}

func (h *fakeHost) Range(ent engine.EntityID, at engine.AttackType) engine.Range {
	return h.units[ent].template.Attack[at].Range()
}

func (h *fakeHost) PreferredClasses(ent engine.EntityID, at engine.AttackType) []string {
	return append([]string(nil), h.units[ent].template.Attack[at].PreferredClasses...)
}

func (h *fakeHost) Classes(ent engine.EntityID) ([]string, bool) {
	u, ok := h.units[ent]
	if !ok || u.template.Identity == nil {
		return nil, false
	}
	return append([]string(nil), u.template.Identity.Classes...), true
}

func (h *fakeHost) CurrentTemplateName(ent engine.EntityID) string {
	if u, ok := h.units[ent]; ok {
		return u.template.Name
	}
	return ""
}

func (h *fakeHost) ResolveTemplateName(name string, ent engine.EntityID) string {
	civ := ""
	if u, ok := h.units[ent]; ok && u.template.Identity != nil {
		civ = u.template.Identity.Civ
	}
	return templates.ResolveName(name, civ, civ)
}

func (h *fakeHost) SetInvincible(ent engine.EntityID, invincible bool) {
	if u, ok := h.units[ent]; ok {
		u.invincible = invincible
	}
}

func (h *fakeHost) IsInvincible(ent engine.EntityID) bool {
	u, ok := h.units[ent]
	return ok && u.invincible
}

// ownedBy returns the live entities of player created from template
func (h *fakeHost) ownedBy(player engine.PlayerID, template string) []engine.EntityID {
	var ents []engine.EntityID
	for id, u := range h.units {
		if u.owner == player && u.template.Name == template {
			ents = append(ents, id)
		}
	}
	sort.Slice(ents, func(i, j int) bool { return ents[i] < ents[j] })
	return ents
}
