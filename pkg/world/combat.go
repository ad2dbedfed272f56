package world

import (
	"sort"

	"github.com/picogrid/legion-battalions/pkg/engine"
	"github.com/picogrid/legion-battalions/pkg/templates"
)

func (w *World) attacks(ent engine.EntityID) (map[engine.AttackType]templates.Attack, bool) {
	entry, ok := w.entry(ent)
	if !ok || !entry.HasComponent(attackComponent) {
		return nil, false
	}
	return attackComponent.Get(entry).Types, true
}

// AttackTypes returns the attack types of ent in name order
func (w *World) AttackTypes(ent engine.EntityID) ([]engine.AttackType, bool) {
	attacks, ok := w.attacks(ent)
	if !ok {
		return nil, false
	}
	types := make([]engine.AttackType, 0, len(attacks))
	for at := range attacks {
		types = append(types, at)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types, true
}

// BestAttackAgainst picks the attack type of ent that prefers target the most.
// Types restricted against any of the target's classes are skipped; ties go to
// the first type in name order.
func (w *World) BestAttackAgainst(ent, target engine.EntityID) (engine.AttackType, bool) {
	types, ok := w.AttackTypes(ent)
	if !ok {
		return "", false
	}
	attacks, _ := w.attacks(ent)
	classes, _ := w.Classes(target)

	var best engine.AttackType
	bestPref, found := -1, false
	for _, at := range types {
		a := attacks[at]
		if restricted(a.RestrictedClasses, classes) {
			continue
		}
		pref := preferenceIndex(a.PreferredClasses, classes)
		if !found || (pref >= 0 && (bestPref < 0 || pref < bestPref)) {
			best, bestPref, found = at, pref, true
		}
	}
	return best, found
}

// Range returns the range of one attack type of ent
func (w *World) Range(ent engine.EntityID, at engine.AttackType) engine.Range {
	attacks, ok := w.attacks(ent)
	if !ok {
		return engine.Range{}
	}
	return attacks[at].Range()
}

// PreferredClasses returns the preferred target classes of one attack type, best first
func (w *World) PreferredClasses(ent engine.EntityID, at engine.AttackType) []string {
	attacks, ok := w.attacks(ent)
	if !ok {
		return nil
	}
	return append([]string(nil), attacks[at].PreferredClasses...)
}

func restricted(restrictions templates.ClassList, classes []string) bool {
	for _, c := range classes {
		if restrictions.Has(c) {
			return true
		}
	}
	return false
}

// preferenceIndex returns the lowest index of any class in preferred, or -1
func preferenceIndex(preferred templates.ClassList, classes []string) int {
	best := -1
	for _, c := range classes {
		for i, p := range preferred {
			if p == c && (best < 0 || i < best) {
				best = i
			}
		}
	}
	return best
}

// SetInvincible toggles the invincibility flag of ent
func (w *World) SetInvincible(ent engine.EntityID, invincible bool) {
	entry, ok := w.entry(ent)
	if !ok || !entry.HasComponent(healthComponent) {
		return
	}
	healthComponent.Get(entry).Invincible = invincible
}

// IsInvincible reports the invincibility flag of ent
func (w *World) IsInvincible(ent engine.EntityID) bool {
	entry, ok := w.entry(ent)
	if !ok || !entry.HasComponent(healthComponent) {
		return false
	}
	return healthComponent.Get(entry).Invincible
}

// Hitpoints returns the remaining hitpoints of ent, ok is false without health
func (w *World) Hitpoints(ent engine.EntityID) (int, bool) {
	entry, ok := w.entry(ent)
	if !ok || !entry.HasComponent(healthComponent) {
		return 0, false
	}
	return healthComponent.Get(entry).Hitpoints, true
}

// Damage reduces the hitpoints of ent and destroys it at zero.
// Invincible entities and entities without health are unaffected.
// Returns true when the entity was killed.
func (w *World) Damage(ent engine.EntityID, amount int) bool {
	entry, ok := w.entry(ent)
	if !ok || !entry.HasComponent(healthComponent) {
		return false
	}
	h := healthComponent.Get(entry)
	if h.Invincible || amount <= 0 {
		return false
	}
	h.Hitpoints -= amount
	if h.Hitpoints > 0 {
		return false
	}
	w.DestroyEntity(ent)
	return true
}
