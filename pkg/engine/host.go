package engine

// Entities creates and destroys entities from named templates
type Entities interface {
	// AddEntity instantiates a template and returns the new entity id
	AddEntity(template string) (EntityID, error)
	DestroyEntity(ent EntityID)
	Exists(ent EntityID) bool
}

// Placement covers positions and spawn-point queries
type Placement interface {
	// PickSpawnPoint finds a free point around the footprint of near for ent.
	// ok is false when no point is available.
	PickSpawnPoint(near, ent EntityID) (p Point, ok bool)
	// Position returns the entity position; ok is false when it is not in the world
	Position(ent EntityID) (p Point, ok bool)
	JumpTo(ent EntityID, p Point)
	SetYRotation(ent EntityID, angle float64)
}

// Ownership reads and assigns owning players
type Ownership interface {
	// Owner returns InvalidPlayer for unowned entities
	Owner(ent EntityID) PlayerID
	SetOwner(ent EntityID, player PlayerID)
}

// Combat answers per-unit attack queries
type Combat interface {
	// AttackTypes returns ok == false when the entity has no attack capability
	AttackTypes(ent EntityID) (types []AttackType, ok bool)
	BestAttackAgainst(ent, target EntityID) (AttackType, bool)
	Range(ent EntityID, attack AttackType) Range
	PreferredClasses(ent EntityID, attack AttackType) []string
}

// Identity exposes class lists
type Identity interface {
	// Classes returns ok == false when the entity has no identity
	Classes(ent EntityID) (classes []string, ok bool)
}

// Templates resolves template names of live entities
type Templates interface {
	CurrentTemplateName(ent EntityID) string
	// ResolveTemplateName substitutes the civ placeholders of name for ent
	ResolveTemplateName(name string, ent EntityID) string
}

// Health toggles invincibility
type Health interface {
	SetInvincible(ent EntityID, invincible bool)
	IsInvincible(ent EntityID) bool
}

// Host bundles every service the battalion core consumes
type Host interface {
	Entities
	Placement
	Ownership
	Combat
	Identity
	Templates
	Health
}
