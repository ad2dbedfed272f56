package battalion

import (
	"sort"

	"github.com/picogrid/legion-battalions/pkg/engine"
)

type attackRecord struct {
	canAttackAsFormation bool
}

// AttackTypeSet is a set of attack types
type AttackTypeSet map[engine.AttackType]struct{}

// Has reports whether at is in the set
func (s AttackTypeSet) Has(at engine.AttackType) bool {
	_, ok := s[at]
	return ok
}

// Sorted returns the members of the set in name order
func (s AttackTypeSet) Sorted() []engine.AttackType {
	types := make([]engine.AttackType, 0, len(s))
	for at := range s {
		types = append(types, at)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// FormationAttack aggregates the attacks of a formation's members into the
// answers a single attacker would give
type FormationAttack struct {
	sys *System
	ent engine.EntityID
	rec *attackRecord
}

// Entity returns the formation controller entity
func (a FormationAttack) Entity() engine.EntityID {
	return a.ent
}

func (a FormationAttack) formation() (Formation, bool) {
	f, ok := a.sys.Formation(a.ent)
	if !ok {
		a.sys.log.Warnf("formation attack %d: entity has no formation", a.ent)
	}
	return f, ok
}

// CanAttackAsFormation reports whether the formation attacks as one body.
// The static flag is overridden by any member with a ranged attack.
func (a FormationAttack) CanAttackAsFormation() bool {
	if a.rec.canAttackAsFormation {
		return true
	}
	return a.GetMemberAttackTypes().Has(engine.AttackRanged)
}

// GetMemberAttackTypes returns the union of the members' attack types
func (a FormationAttack) GetMemberAttackTypes() AttackTypeSet {
	types := AttackTypeSet{}
	f, ok := a.formation()
	if !ok {
		return types
	}
	for _, m := range f.GetMembers() {
		memberTypes, ok := a.sys.host.AttackTypes(m)
		if !ok {
			continue
		}
		for _, at := range memberTypes {
			types[at] = struct{}{}
		}
	}
	return types
}

// GetAttackTypes returns the members' attack types in name order
func (a FormationAttack) GetAttackTypes() []engine.AttackType {
	return a.GetMemberAttackTypes().Sorted()
}

// GetRange combines the members' ranges against target. Each member
// contributes the range of its best attack against target. Min is the
// smallest member min. Attacking as a formation the max is the smallest
// bounded member max; otherwise it is the largest, with any unbounded
// member making it unbounded. A bounded max is extended by half the
// formation depth.
func (a FormationAttack) GetRange(target engine.EntityID) engine.Range {
	asFormation := a.CanAttackAsFormation()
	fallback := engine.Range{Min: 0, Max: 0}
	if a.rec.canAttackAsFormation {
		fallback.Max = engine.Unbounded
	}

	f, ok := a.formation()
	if !ok {
		return fallback
	}

	var result engine.Range
	found := false
	for _, m := range f.GetMembers() {
		if _, ok := a.sys.host.AttackTypes(m); !ok {
			continue
		}
		at, ok := a.sys.host.BestAttackAgainst(m, target)
		if !ok {
			continue
		}
		r := a.sys.host.Range(m, at)
		if !found {
			result, found = r, true
			continue
		}
		result.Min = min(result.Min, r.Min)
		result.Max = combineMax(result.Max, r.Max, asFormation)
	}
	if !found {
		return fallback
	}

	if result.Bounded() {
		result.Max += f.Size().Depth / 2
	}
	return result
}

func combineMax(acc, v float64, asFormation bool) float64 {
	accBounded, vBounded := acc >= 0, v >= 0
	if asFormation {
		switch {
		case !vBounded:
			return acc
		case !accBounded:
			return v
		default:
			return min(acc, v)
		}
	}
	if !accBounded || !vBounded {
		return engine.Unbounded
	}
	return max(acc, v)
}

// GetPreference scores how much the formation prefers target, lower is
// better. Members are sampled once per template and every attack type is
// scored by the first template whose preferences match target. A ranged
// score is returned as soon as it is known. ok is false when no attack type
// prefers target.
func (a FormationAttack) GetPreference(target engine.EntityID) (int, bool) {
	f, ok := a.formation()
	if !ok {
		return 0, false
	}
	classes, ok := a.sys.host.Classes(target)
	if !ok {
		return 0, false
	}

	seenTemplates := make(map[string]bool)
	scores := make(map[engine.AttackType]int)

	for _, m := range f.GetMembers() {
		types, ok := a.sys.host.AttackTypes(m)
		if !ok {
			continue
		}
		tpl := a.sys.host.CurrentTemplateName(m)
		if seenTemplates[tpl] {
			continue
		}
		seenTemplates[tpl] = true

		for _, at := range types {
			if _, ok := scores[at]; ok {
				continue
			}
			if idx, ok := preferenceIndex(a.sys.host.PreferredClasses(m, at), classes); ok {
				scores[at] = idx
			}
			if at == engine.AttackRanged {
				break
			}
		}

		if score, ok := scores[engine.AttackRanged]; ok {
			return score, true
		}
	}

	best, found := 0, false
	for _, score := range scores {
		if !found || score < best {
			best, found = score, true
		}
	}
	return best, found
}

// preferenceIndex returns the smallest index in preferred of any of classes
func preferenceIndex(preferred, classes []string) (int, bool) {
	best, found := 0, false
	for _, c := range classes {
		for i, p := range preferred {
			if p != c {
				continue
			}
			if i == 0 {
				return 0, true
			}
			if !found || i < best {
				best, found = i, true
			}
			break
		}
	}
	return best, found
}
