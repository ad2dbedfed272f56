package battalion

import "github.com/picogrid/legion-battalions/pkg/engine"

type memberRecord struct {
	leader engine.EntityID
}

// BattalionMember is the back-reference a member unit holds to its battalion leader
type BattalionMember struct {
	sys *System
	ent engine.EntityID
	rec *memberRecord
}

// Entity returns the member entity
func (m BattalionMember) Entity() engine.EntityID {
	return m.ent
}

// GetLeader returns the battalion leader, or engine.InvalidEntity
func (m BattalionMember) GetLeader() engine.EntityID {
	return m.rec.leader
}

// SetLeader overwrites the leader. The target is not checked to be a battalion.
func (m BattalionMember) SetLeader(leader engine.EntityID) {
	m.rec.leader = leader
}

// onOwnershipChanged detaches a captured or destroyed member from its battalion.
// Changes out of "no owner" are the initial assignment and are ignored.
// The leader field stays stale; the member has left battalion control either way.
func (m BattalionMember) onOwnershipChanged(msg engine.OwnershipChanged) {
	if msg.From == engine.InvalidPlayer {
		return
	}

	b, ok := m.sys.Battalion(m.rec.leader)
	if !ok {
		if m.rec.leader.Valid() {
			m.sys.log.Warnf("member %d: leader %d has no battalion", m.ent, m.rec.leader)
		}
		return
	}
	b.RemoveMember(msg.Entity)
}
