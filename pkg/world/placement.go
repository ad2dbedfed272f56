package world

import (
	"math"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"

	"github.com/picogrid/legion-battalions/pkg/engine"
)

var positioned = donburi.NewQuery(filter.Contains(positionComponent))

// Position returns the position of ent if it is in the world
func (w *World) Position(ent engine.EntityID) (engine.Point, bool) {
	entry, ok := w.entry(ent)
	if !ok {
		return engine.Point{}, false
	}
	pos := positionComponent.Get(entry)
	return pos.Point, pos.InWorld
}

// JumpTo places ent at p
func (w *World) JumpTo(ent engine.EntityID, p engine.Point) {
	entry, ok := w.entry(ent)
	if !ok {
		return
	}
	pos := positionComponent.Get(entry)
	pos.Point = p
	pos.InWorld = true
}

// SetYRotation sets the facing angle of ent
func (w *World) SetYRotation(ent engine.EntityID, angle float64) {
	entry, ok := w.entry(ent)
	if !ok {
		return
	}
	positionComponent.Get(entry).RotY = angle
}

// Rotation returns the facing angle of ent
func (w *World) Rotation(ent engine.EntityID) float64 {
	entry, ok := w.entry(ent)
	if !ok {
		return 0
	}
	return positionComponent.Get(entry).RotY
}

// PickSpawnPoint walks rings around the footprint of near and returns the
// first slot not occupied by another entity. Ring r sits at
// radius + r*spacing and has 8*r slots.
func (w *World) PickSpawnPoint(near, ent engine.EntityID) (engine.Point, bool) {
	center, ok := w.Position(near)
	if !ok {
		return engine.Point{}, false
	}

	radius, spacing := 0.0, w.cfg.DefaultSpawnSpacing
	if entry, ok := w.entry(near); ok && entry.HasComponent(footprintComponent) {
		fp := footprintComponent.Get(entry)
		radius = fp.Radius
		if fp.SpawnSpacing > 0 {
			spacing = fp.SpawnSpacing
		}
	}

	occupied := w.occupiedPoints(ent)
	for ring := 1; ring <= w.cfg.MaxSpawnRings; ring++ {
		r := radius + float64(ring)*spacing
		slots := 8 * ring
		for i := 0; i < slots; i++ {
			angle := 2 * math.Pi * float64(i) / float64(slots)
			p := engine.Point{
				X: center.X + r*math.Sin(angle),
				Z: center.Z + r*math.Cos(angle),
			}
			if isFree(p, occupied, spacing/2) {
				return p, true
			}
		}
	}
	return engine.Point{}, false
}

func (w *World) occupiedPoints(except engine.EntityID) []engine.Point {
	var points []engine.Point
	positioned.Each(w.ecs, func(entry *donburi.Entry) {
		if infoComponent.Get(entry).ID == except {
			return
		}
		if pos := positionComponent.Get(entry); pos.InWorld {
			points = append(points, pos.Point)
		}
	})
	return points
}

func isFree(p engine.Point, occupied []engine.Point, clearance float64) bool {
	for _, o := range occupied {
		if p.DistanceTo(o) < clearance {
			return false
		}
	}
	return true
}
