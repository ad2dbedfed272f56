package world

import (
	"github.com/yohamta/donburi"

	"github.com/picogrid/legion-battalions/pkg/engine"
	"github.com/picogrid/legion-battalions/pkg/templates"
)

// entityInfo is attached to every entity
type entityInfo struct {
	ID       engine.EntityID
	Template string
}

type position struct {
	Point   engine.Point
	RotY    float64
	InWorld bool
}

type ownership struct {
	Owner engine.PlayerID
}

type health struct {
	Hitpoints    int
	MaxHitpoints int
	Invincible   bool
}

type attack struct {
	Types map[engine.AttackType]templates.Attack
}

var (
	infoComponent      = donburi.NewComponentType[entityInfo]()
	positionComponent  = donburi.NewComponentType[position]()
	ownershipComponent = donburi.NewComponentType[ownership]()
	identityComponent  = donburi.NewComponentType[templates.Identity]()
	attackComponent    = donburi.NewComponentType[attack]()
	healthComponent    = donburi.NewComponentType[health]()
	footprintComponent = donburi.NewComponentType[templates.Footprint]()
)

// componentsFor lists the donburi components a template instantiates
func componentsFor(tpl *templates.Template) []donburi.IComponentType {
	comps := []donburi.IComponentType{infoComponent, positionComponent, ownershipComponent}
	if tpl.Identity != nil {
		comps = append(comps, identityComponent)
	}
	if tpl.Attack != nil {
		comps = append(comps, attackComponent)
	}
	if tpl.Health != nil {
		comps = append(comps, healthComponent)
	}
	if tpl.Footprint != nil {
		comps = append(comps, footprintComponent)
	}
	return comps
}

func initComponents(entry *donburi.Entry, id engine.EntityID, tpl *templates.Template) {
	infoComponent.SetValue(entry, entityInfo{ID: id, Template: tpl.Name})
	ownershipComponent.SetValue(entry, ownership{Owner: engine.InvalidPlayer})

	if tpl.Identity != nil {
		identity := templates.Identity{
			Civ:     tpl.Identity.Civ,
			Classes: append(templates.ClassList(nil), tpl.Identity.Classes...),
		}
		identityComponent.SetValue(entry, identity)
	}
	if tpl.Attack != nil {
		types := make(map[engine.AttackType]templates.Attack, len(tpl.Attack))
		for at, a := range tpl.Attack {
			types[at] = a
		}
		attackComponent.SetValue(entry, attack{Types: types})
	}
	if tpl.Health != nil {
		healthComponent.SetValue(entry, health{
			Hitpoints:    tpl.Health.MaxHitpoints,
			MaxHitpoints: tpl.Health.MaxHitpoints,
		})
	}
	if tpl.Footprint != nil {
		footprintComponent.SetValue(entry, *tpl.Footprint)
	}
}
