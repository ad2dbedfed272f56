package battalion

import (
	"github.com/looplab/fsm"

	"github.com/picogrid/legion-battalions/pkg/engine"
	"github.com/picogrid/legion-battalions/pkg/templates"
)

type battalionRecord struct {
	numberOfUnits          int
	spawnFormationTemplate string
	templateName           string
	leaderTemplateName     string

	entities        []engine.EntityID
	formationEntity engine.EntityID
	state           *fsm.FSM

	// set by the first unowned->owned transition of the leader
	claimed bool
}

func newBattalionRecord(cfg templates.Battalion) *battalionRecord {
	return &battalionRecord{
		numberOfUnits:          cfg.NumberOfUnits,
		spawnFormationTemplate: cfg.SpawnFormationTemplate,
		templateName:           cfg.TemplateName,
		leaderTemplateName:     cfg.LeaderTemplateName,
		formationEntity:        engine.InvalidEntity,
	}
}

// Battalion is a leader entity owning a roster of spawned member units and
// a formation controller binding them together
type Battalion struct {
	sys *System
	ent engine.EntityID
	rec *battalionRecord
}

func (b Battalion) init() {
	b.rec.state = newLifecycle(b.ent, b.sys.log)
	b.fire(eventConfigure)
	b.syncState()
}

// Entity returns the leader entity
func (b Battalion) Entity() engine.EntityID {
	return b.ent
}

// State returns the lifecycle state
func (b Battalion) State() string {
	return b.rec.state.Current()
}

// NumberOfUnits returns the configured roster size
func (b Battalion) NumberOfUnits() int {
	return b.rec.numberOfUnits
}

// TemplateName returns the unresolved member template name
func (b Battalion) TemplateName() string {
	return b.rec.templateName
}

// LeaderTemplateName returns the leader template name. It is informational only.
func (b Battalion) LeaderTemplateName() string {
	return b.rec.leaderTemplateName
}

// SpawnFormationTemplate returns the template of the formation controller
func (b Battalion) SpawnFormationTemplate() string {
	return b.rec.spawnFormationTemplate
}

// GetLeader returns the leader entity, the battalion itself
func (b Battalion) GetLeader() engine.EntityID {
	return b.ent
}

// GetMembers returns a copy of the roster in spawn order
func (b Battalion) GetMembers() []engine.EntityID {
	return append([]engine.EntityID(nil), b.rec.entities...)
}

// SetMembers replaces the roster. Duplicates and invalid ids are dropped;
// member back-references are left alone.
func (b Battalion) SetMembers(ents []engine.EntityID) {
	roster := make([]engine.EntityID, 0, len(ents))
	for _, ent := range ents {
		if ent.Valid() && !containsEntity(roster, ent) {
			roster = append(roster, ent)
		}
	}
	b.rec.entities = roster
	b.syncState()
}

// GetFormationEntity returns the bound formation controller, or engine.InvalidEntity
func (b Battalion) GetFormationEntity() engine.EntityID {
	return b.rec.formationEntity
}

// SetFormationEntity binds a formation controller without touching its membership
func (b Battalion) SetFormationEntity(ent engine.EntityID) {
	b.rec.formationEntity = ent
	b.syncState()
}

// SpawnUnits creates up to NumberOfUnits member units around the leader,
// owned by the leader's owner and facing away from it. Spawning stops at the
// first unit without a free spawn point; that unit is destroyed. Returns the
// number of units added to the roster.
func (b Battalion) SpawnUnits() int {
	host := b.sys.host
	owner := host.Owner(b.ent)
	center, hasCenter := host.Position(b.ent)
	name := host.ResolveTemplateName(b.rec.templateName, b.ent)

	spawned := 0
	for i := 0; i < b.rec.numberOfUnits; i++ {
		ent, err := host.AddEntity(name)
		if err != nil {
			b.sys.log.Errorf("battalion %d: failed to spawn member: %v", b.ent, err)
			break
		}

		pos, ok := host.PickSpawnPoint(b.ent, ent)
		if !ok {
			host.DestroyEntity(ent)
			b.sys.log.Warnf("battalion %d: no spawn point for %s, spawned %d of %d",
				b.ent, name, spawned, b.rec.numberOfUnits)
			break
		}

		host.JumpTo(ent, pos)
		if hasCenter {
			host.SetYRotation(ent, center.HorizAngleTo(pos))
		}
		host.SetOwner(ent, owner)

		b.rec.entities = append(b.rec.entities, ent)
		spawned++
	}

	b.sys.log.Debugf("battalion %d: spawned %d x %s", b.ent, spawned, name)
	b.syncState()
	return spawned
}

// CreateFormation binds the roster and the leader to a formation controller
// and points every member back at the leader. An empty roster is spawned
// first. The controller is created on the first call and reused after, unless
// it was destroyed in between. Returns the controller entity.
func (b Battalion) CreateFormation() engine.EntityID {
	host := b.sys.host

	b.pruneRoster()
	if len(b.rec.entities) == 0 {
		b.SpawnUnits()
	}

	if !b.rec.formationEntity.Valid() || !host.Exists(b.rec.formationEntity) {
		ent, err := host.AddEntity(b.rec.spawnFormationTemplate)
		if err != nil {
			b.sys.log.Errorf("battalion %d: failed to create formation: %v", b.ent, err)
			b.rec.formationEntity = engine.InvalidEntity
			b.syncState()
			return engine.InvalidEntity
		}
		b.rec.formationEntity = ent
	}

	formation, ok := b.sys.Formation(b.rec.formationEntity)
	if !ok {
		b.sys.log.Warnf("battalion %d: %s has no formation", b.ent, b.rec.spawnFormationTemplate)
		b.syncState()
		return b.rec.formationEntity
	}

	host.SetOwner(formation.Entity(), host.Owner(b.ent))
	formation.SetMembers(b.rec.entities)
	formation.AddMembers([]engine.EntityID{b.ent})

	for _, ent := range b.rec.entities {
		member, ok := b.sys.BattalionMember(ent)
		if !ok {
			b.sys.log.Warnf("battalion %d: unit %d is not a battalion member", b.ent, ent)
			continue
		}
		member.SetLeader(b.ent)
	}

	b.syncState()
	return formation.Entity()
}

// RemoveMember drops ent from the roster and from the formation controller.
// Unknown entities are ignored. Emptying the roster lifts the leader's shield.
func (b Battalion) RemoveMember(ent engine.EntityID) {
	idx := -1
	for i, e := range b.rec.entities {
		if e == ent {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	roster := make([]engine.EntityID, 0, len(b.rec.entities)-1)
	roster = append(roster, b.rec.entities[:idx]...)
	b.rec.entities = append(roster, b.rec.entities[idx+1:]...)

	if formation, ok := b.sys.Formation(b.rec.formationEntity); ok {
		formation.RemoveMembers([]engine.EntityID{ent})
	}
	b.syncState()
}

// pruneRoster drops members that no longer exist
func (b Battalion) pruneRoster() {
	roster := b.rec.entities[:0:0]
	for _, ent := range b.rec.entities {
		if b.sys.host.Exists(ent) {
			roster = append(roster, ent)
		}
	}
	b.rec.entities = roster
}

// onOwnershipChanged spawns the roster the first time the leader goes from
// unowned to owned, unless members were placed before. Later claims never
// spawn. After game start the formation is assembled right away.
func (b Battalion) onOwnershipChanged(msg engine.OwnershipChanged) {
	if msg.From != engine.InvalidPlayer || msg.To == engine.InvalidPlayer {
		return
	}
	if b.rec.claimed {
		return
	}
	b.rec.claimed = true
	if len(b.rec.entities) > 0 {
		return
	}

	b.SpawnUnits()
	if b.sys.gameStarted && len(b.rec.entities) > 0 {
		b.CreateFormation()
	}
}
