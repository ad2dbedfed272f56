package world

import (
	"fmt"
	"sort"

	"github.com/yohamta/donburi"

	"github.com/picogrid/legion-battalions/pkg/engine"
	"github.com/picogrid/legion-battalions/pkg/logger"
	"github.com/picogrid/legion-battalions/pkg/templates"
)

// ComponentHandler receives entity lifecycle messages. Handlers are called
// synchronously, in registration order, on the simulation goroutine.
type ComponentHandler interface {
	// InitEntity is called right after an entity is created from tpl
	InitEntity(ent engine.EntityID, tpl *templates.Template)
	OnOwnershipChanged(msg engine.OwnershipChanged)
	// OnEntityDestroyed is called before the entity's components are dropped
	OnEntityDestroyed(ent engine.EntityID)
}

// Player is a participant owning entities
type Player struct {
	ID   engine.PlayerID
	Name string
	Civ  string
}

// Config tunes the world services
type Config struct {
	// MaxSpawnRings bounds the spawn point search around a footprint
	MaxSpawnRings int
	// DefaultSpawnSpacing is used for footprints without a spawn spacing
	DefaultSpawnSpacing float64
}

// DefaultConfig returns the default world configuration
func DefaultConfig() Config {
	return Config{
		MaxSpawnRings:       4,
		DefaultSpawnSpacing: 2,
	}
}

// World is the entity runtime. It implements engine.Host on top of a donburi world.
type World struct {
	ecs       donburi.World
	entities  map[engine.EntityID]donburi.Entity
	nextID    engine.EntityID
	templates *templates.Set
	players   map[engine.PlayerID]Player
	handlers  []ComponentHandler
	cfg       Config
	log       logger.Logger
}

var _ engine.Host = (*World)(nil)

// New creates an empty world instantiating entities from set
func New(set *templates.Set, cfg Config) *World {
	if cfg.MaxSpawnRings <= 0 {
		cfg.MaxSpawnRings = DefaultConfig().MaxSpawnRings
	}
	if cfg.DefaultSpawnSpacing <= 0 {
		cfg.DefaultSpawnSpacing = DefaultConfig().DefaultSpawnSpacing
	}
	return &World{
		ecs:       donburi.NewWorld(),
		entities:  make(map[engine.EntityID]donburi.Entity),
		templates: set,
		players:   make(map[engine.PlayerID]Player),
		cfg:       cfg,
		log:       logger.WithPrefix("world"),
	}
}

// RegisterHandler subscribes h to entity lifecycle messages
func (w *World) RegisterHandler(h ComponentHandler) {
	w.handlers = append(w.handlers, h)
}

// AddPlayer registers or replaces a player
func (w *World) AddPlayer(p Player) {
	w.players[p.ID] = p
}

// Player returns the player with the given id
func (w *World) Player(id engine.PlayerID) (Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

// Templates returns the template set the world instantiates from
func (w *World) Templates() *templates.Set {
	return w.templates
}

func (w *World) entry(ent engine.EntityID) (*donburi.Entry, bool) {
	e, ok := w.entities[ent]
	if !ok || !w.ecs.Valid(e) {
		return nil, false
	}
	return w.ecs.Entry(e), true
}

// AddEntity instantiates the named template
func (w *World) AddEntity(name string) (engine.EntityID, error) {
	tpl, err := w.templates.Get(name)
	if err != nil {
		return engine.InvalidEntity, fmt.Errorf("failed to add entity: %w", err)
	}

	e := w.ecs.Create(componentsFor(tpl)...)
	w.nextID++
	id := w.nextID
	w.entities[id] = e
	initComponents(w.ecs.Entry(e), id, tpl)

	w.log.Debugf("created entity %d from %s", id, name)

	for _, h := range w.handlers {
		h.InitEntity(id, tpl)
	}
	return id, nil
}

// DestroyEntity removes ent. Owned entities first report a change to InvalidPlayer.
func (w *World) DestroyEntity(ent engine.EntityID) {
	if _, ok := w.entry(ent); !ok {
		return
	}

	if owner := w.Owner(ent); owner != engine.InvalidPlayer {
		w.SetOwner(ent, engine.InvalidPlayer)
	}

	for _, h := range w.handlers {
		h.OnEntityDestroyed(ent)
	}

	// a handler may have destroyed it already
	if e, ok := w.entities[ent]; ok {
		if w.ecs.Valid(e) {
			w.ecs.Remove(e)
		}
		delete(w.entities, ent)
	}
	w.log.Debugf("destroyed entity %d", ent)
}

// Exists reports whether ent is alive
func (w *World) Exists(ent engine.EntityID) bool {
	_, ok := w.entry(ent)
	return ok
}

// Entities returns the ids of all live entities, ascending
func (w *World) Entities() []engine.EntityID {
	ids := make([]engine.EntityID, 0, len(w.entities))
	for id := range w.entities {
		if w.Exists(id) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// EntitiesOwnedBy returns the live entities of player, ascending
func (w *World) EntitiesOwnedBy(player engine.PlayerID) []engine.EntityID {
	var ids []engine.EntityID
	for _, id := range w.Entities() {
		if w.Owner(id) == player {
			ids = append(ids, id)
		}
	}
	return ids
}

// Owner returns the owning player of ent
func (w *World) Owner(ent engine.EntityID) engine.PlayerID {
	entry, ok := w.entry(ent)
	if !ok {
		return engine.InvalidPlayer
	}
	return ownershipComponent.Get(entry).Owner
}

// SetOwner assigns ent to player and notifies the handlers when the owner changed
func (w *World) SetOwner(ent engine.EntityID, player engine.PlayerID) {
	entry, ok := w.entry(ent)
	if !ok {
		return
	}
	own := ownershipComponent.Get(entry)
	if own.Owner == player {
		return
	}
	msg := engine.OwnershipChanged{Entity: ent, From: own.Owner, To: player}
	own.Owner = player

	for _, h := range w.handlers {
		h.OnOwnershipChanged(msg)
	}
}

// CurrentTemplateName returns the template ent was created from
func (w *World) CurrentTemplateName(ent engine.EntityID) string {
	entry, ok := w.entry(ent)
	if !ok {
		return ""
	}
	return infoComponent.Get(entry).Template
}

// Civ returns the native civ of ent
func (w *World) Civ(ent engine.EntityID) string {
	entry, ok := w.entry(ent)
	if !ok || !entry.HasComponent(identityComponent) {
		return ""
	}
	return identityComponent.Get(entry).Civ
}

// ResolveTemplateName replaces {civ} with the civ of ent's owner and {native}
// with ent's own civ. Unowned entities use their native civ for both.
func (w *World) ResolveTemplateName(name string, ent engine.EntityID) string {
	native := w.Civ(ent)
	ownerCiv := native
	if p, ok := w.players[w.Owner(ent)]; ok && p.Civ != "" {
		ownerCiv = p.Civ
	}
	return templates.ResolveName(name, ownerCiv, native)
}

// Classes returns the identity classes of ent
func (w *World) Classes(ent engine.EntityID) ([]string, bool) {
	entry, ok := w.entry(ent)
	if !ok || !entry.HasComponent(identityComponent) {
		return nil, false
	}
	classes := identityComponent.Get(entry).Classes
	return append([]string(nil), classes...), true
}
