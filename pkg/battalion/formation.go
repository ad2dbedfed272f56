package battalion

import (
	"github.com/picogrid/legion-battalions/pkg/engine"
	"github.com/picogrid/legion-battalions/pkg/templates"
)

type formationRecord struct {
	width   int
	spacing float64
	members []engine.EntityID
}

func newFormationRecord(cfg templates.Formation) *formationRecord {
	width := cfg.Width
	if width < 1 {
		width = 1
	}
	return &formationRecord{width: width, spacing: cfg.Spacing}
}

// FormationSize is the footprint of a formation. Depth runs front to back.
type FormationSize struct {
	Width float64
	Depth float64
}

// Formation is a formation controller entity holding a membership list
type Formation struct {
	ent engine.EntityID
	rec *formationRecord
}

// Entity returns the controller entity
func (f Formation) Entity() engine.EntityID {
	return f.ent
}

// GetMembers returns a copy of the membership in join order
func (f Formation) GetMembers() []engine.EntityID {
	return append([]engine.EntityID(nil), f.rec.members...)
}

// SetMembers replaces the membership
func (f Formation) SetMembers(ents []engine.EntityID) {
	f.rec.members = f.rec.members[:0:0]
	f.AddMembers(ents)
}

// AddMembers appends entities not yet in the formation
func (f Formation) AddMembers(ents []engine.EntityID) {
	for _, ent := range ents {
		if ent.Valid() && !f.HasMember(ent) {
			f.rec.members = append(f.rec.members, ent)
		}
	}
}

// RemoveMembers drops the given entities from the formation
func (f Formation) RemoveMembers(ents []engine.EntityID) {
	kept := make([]engine.EntityID, 0, len(f.rec.members))
	for _, m := range f.rec.members {
		if !containsEntity(ents, m) {
			kept = append(kept, m)
		}
	}
	f.rec.members = kept
}

// HasMember reports whether ent belongs to the formation
func (f Formation) HasMember(ent engine.EntityID) bool {
	return containsEntity(f.rec.members, ent)
}

// Size lays the members out in ranks of at most width files and returns the
// resulting footprint
func (f Formation) Size() FormationSize {
	n := len(f.rec.members)
	if n == 0 {
		return FormationSize{}
	}
	ranks := (n + f.rec.width - 1) / f.rec.width
	files := min(n, f.rec.width)
	return FormationSize{
		Width: float64(files-1) * f.rec.spacing,
		Depth: float64(ranks-1) * f.rec.spacing,
	}
}

func containsEntity(ents []engine.EntityID, ent engine.EntityID) bool {
	for _, e := range ents {
		if e == ent {
			return true
		}
	}
	return false
}
