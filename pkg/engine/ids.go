package engine

import "math"

// EntityID identifies a simulation entity
type EntityID uint32

// InvalidEntity is the "no entity" sentinel. Entity ids handed out by a world start at 1.
const InvalidEntity EntityID = 0

// Valid reports whether the id refers to a (possibly destroyed) entity
func (e EntityID) Valid() bool {
	return e != InvalidEntity
}

// PlayerID identifies the owner of an entity
type PlayerID int32

// InvalidPlayer marks an unowned entity
const InvalidPlayer PlayerID = -1

// AttackType names one attack capability of a unit ("Melee", "Ranged", ...)
type AttackType string

// Known attack types
const (
	AttackMelee     AttackType = "Melee"
	AttackRanged    AttackType = "Ranged"
	AttackCapture   AttackType = "Capture"
	AttackSlaughter AttackType = "Slaughter"
)

// Point is a position on the horizontal plane (x east, z north)
type Point struct {
	X float64
	Z float64
}

// HorizAngleTo returns the facing angle from p towards target,
// measured from the +z axis towards +x.
func (p Point) HorizAngleTo(target Point) float64 {
	return math.Atan2(target.X-p.X, target.Z-p.Z)
}

// DistanceTo returns the euclidean distance between two points
func (p Point) DistanceTo(other Point) float64 {
	return math.Hypot(other.X-p.X, other.Z-p.Z)
}

// Unbounded is the Max value of a Range without an upper limit
const Unbounded = -1.0

// Range is an attack distance band. A negative Max means unbounded.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Bounded reports whether the range has a finite maximum
func (r Range) Bounded() bool {
	return r.Max >= 0
}

// OwnershipChanged is delivered synchronously whenever an entity changes owner.
// Destroyed entities report To == InvalidPlayer.
type OwnershipChanged struct {
	Entity EntityID
	From   PlayerID
	To     PlayerID
}
