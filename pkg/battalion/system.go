// Package battalion implements battalions: leader entities that spawn and lead
// member units, bind them to a formation controller and aggregate the members'
// combat capability into formation level answers.
//
// All records live in explicit per-capability stores owned by a System and
// every operation names its entity. A System runs on the single simulation
// goroutine and is not safe for concurrent use.
package battalion

import (
	"github.com/picogrid/legion-battalions/pkg/engine"
	"github.com/picogrid/legion-battalions/pkg/logger"
	"github.com/picogrid/legion-battalions/pkg/templates"
)

// System owns the battalion, member, formation and formation attack records
type System struct {
	host engine.Host

	members    *engine.Store[*memberRecord]
	battalions *engine.Store[*battalionRecord]
	formations *engine.Store[*formationRecord]
	attacks    *engine.Store[*attackRecord]

	gameStarted bool
	log         logger.Logger
}

// NewSystem creates a System calling into host for every external query
func NewSystem(host engine.Host) *System {
	return &System{
		host:       host,
		members:    engine.NewStore[*memberRecord](),
		battalions: engine.NewStore[*battalionRecord](),
		formations: engine.NewStore[*formationRecord](),
		attacks:    engine.NewStore[*attackRecord](),
		log:        logger.WithPrefix("battalion"),
	}
}

// InitEntity creates the records declared by tpl for a new entity
func (s *System) InitEntity(ent engine.EntityID, tpl *templates.Template) {
	if tpl.BattalionMember != nil {
		s.members.Set(ent, &memberRecord{leader: engine.InvalidEntity})
	}
	if tpl.Formation != nil {
		s.formations.Set(ent, newFormationRecord(*tpl.Formation))
	}
	if tpl.FormationAttack != nil {
		s.attacks.Set(ent, &attackRecord{canAttackAsFormation: tpl.FormationAttack.CanAttackAsFormation})
	}
	if tpl.Battalion != nil {
		rec := newBattalionRecord(*tpl.Battalion)
		s.battalions.Set(ent, rec)
		Battalion{sys: s, ent: ent, rec: rec}.init()
	}
}

// OnOwnershipChanged routes an ownership change to the member and battalion hooks of the entity
func (s *System) OnOwnershipChanged(msg engine.OwnershipChanged) {
	if m, ok := s.BattalionMember(msg.Entity); ok {
		m.onOwnershipChanged(msg)
	}
	if b, ok := s.Battalion(msg.Entity); ok {
		b.onOwnershipChanged(msg)
	}
}

// OnEntityDestroyed drops every record of ent. Members of a destroyed
// battalion are left as they are.
func (s *System) OnEntityDestroyed(ent engine.EntityID) {
	s.members.Remove(ent)
	s.battalions.Remove(ent)
	s.formations.Remove(ent)
	s.attacks.Remove(ent)
}

// OnInitGame assembles the formation of every battalion once all scenario
// entities are loaded. Battalions created later assemble on their own.
func (s *System) OnInitGame() {
	s.gameStarted = true
	for _, ent := range s.battalions.Entities() {
		if b, ok := s.Battalion(ent); ok {
			b.CreateFormation()
		}
	}
}

// GameStarted reports whether OnInitGame has run
func (s *System) GameStarted() bool {
	return s.gameStarted
}

// BattalionMember returns the member handle of ent
func (s *System) BattalionMember(ent engine.EntityID) (BattalionMember, bool) {
	rec, ok := s.members.Get(ent)
	if !ok {
		return BattalionMember{}, false
	}
	return BattalionMember{sys: s, ent: ent, rec: rec}, true
}

// Battalion returns the battalion handle of ent
func (s *System) Battalion(ent engine.EntityID) (Battalion, bool) {
	rec, ok := s.battalions.Get(ent)
	if !ok {
		return Battalion{}, false
	}
	return Battalion{sys: s, ent: ent, rec: rec}, true
}

// Formation returns the formation controller handle of ent
func (s *System) Formation(ent engine.EntityID) (Formation, bool) {
	rec, ok := s.formations.Get(ent)
	if !ok {
		return Formation{}, false
	}
	return Formation{ent: ent, rec: rec}, true
}

// FormationAttack returns the formation attack handle of ent
func (s *System) FormationAttack(ent engine.EntityID) (FormationAttack, bool) {
	rec, ok := s.attacks.Get(ent)
	if !ok {
		return FormationAttack{}, false
	}
	return FormationAttack{sys: s, ent: ent, rec: rec}, true
}

// State returns the lifecycle state of the battalion ent, or "" when ent has none
func (s *System) State(ent engine.EntityID) string {
	if b, ok := s.Battalion(ent); ok {
		return b.State()
	}
	return ""
}

// Battalions returns every battalion entity in creation order
func (s *System) Battalions() []engine.EntityID {
	return s.battalions.Entities()
}
