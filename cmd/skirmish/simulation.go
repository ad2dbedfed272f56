// Package skirmish is a battalion skirmish: players raise battalions from
// templates, the game starts and every tick each battalion may lose a member
// to casualties or capture while its formation reports range and preference
// against the enemy.
package skirmish

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/picogrid/legion-battalions/cmd/skirmish/config"
	"github.com/picogrid/legion-battalions/pkg/battalion"
	"github.com/picogrid/legion-battalions/pkg/engine"
	"github.com/picogrid/legion-battalions/pkg/logger"
	"github.com/picogrid/legion-battalions/pkg/reporting"
	"github.com/picogrid/legion-battalions/pkg/simulation"
	"github.com/picogrid/legion-battalions/pkg/templates"
	"github.com/picogrid/legion-battalions/pkg/world"
)

// SimulationName is the registry name of the skirmish
const SimulationName = "battalion-skirmish"

const statusEvery = 5

//go:embed templates.yaml
var builtinTemplates []byte

// BuiltinTemplates parses the templates shipped with the skirmish
func BuiltinTemplates() (*templates.Set, error) {
	return templates.Parse(builtinTemplates)
}

// army is the state of one player
type army struct {
	player  world.Player
	origin  engine.Point
	leaders []engine.EntityID
	raised  int
	enemy   *army
}

// Stats counts what happened during a run
type Stats struct {
	Ticks      int
	Battalions int
	Raised     int
	Casualties int
	Captures   int
	Depleted   int
	Remaining  map[string]int
}

// Skirmish implements simulation.Simulation
type Skirmish struct {
	cfg *config.SimulationConfig

	world    *world.World
	system   *battalion.System
	reporter *reporting.Reporter
	rng      *rand.Rand
	armies   []*army
	log      logger.Logger

	mu       sync.RWMutex
	stats    Stats
	stopChan chan struct{}
}

// NewSkirmish creates a new instance of the skirmish
func NewSkirmish() simulation.Simulation {
	return &Skirmish{
		stopChan: make(chan struct{}),
		log:      logger.WithPrefix("skirmish"),
	}
}

// Name returns the simulation name
func (s *Skirmish) Name() string {
	return SimulationName
}

// Description returns the simulation description
func (s *Skirmish) Description() string {
	return "Two armies of battalions trading casualties and captures"
}

// Configure loads the scenario and applies params on top of it. A "config"
// string parameter names a scenario file.
func (s *Skirmish) Configure(params map[string]interface{}) error {
	path, _ := params["config"].(string)
	cfg, err := config.LoadConfigWithOverrides(path, params)
	if err != nil {
		return fmt.Errorf("failed to configure skirmish: %w", err)
	}
	s.cfg = cfg

	if cfg.Logging.ConsoleLevel != "" {
		logger.SetLevel(logger.ParseLevel(cfg.Logging.ConsoleLevel))
	}

	s.log.Infof("Configuration: %d players with %d battalions each, %d ticks every %v",
		len(cfg.Players), cfg.Defaults.NumBattalions, cfg.Simulation.Ticks, cfg.Simulation.TickInterval)
	s.log.Debug(cfg.String())
	return nil
}

// Run executes the skirmish
func (s *Skirmish) Run(ctx context.Context) error {
	if s.cfg == nil {
		if err := s.Configure(nil); err != nil {
			return err
		}
	}
	logger.LogSection(fmt.Sprintf("%s %s", logger.IconSword, s.cfg.Simulation.Name))

	if err := s.initialize(); err != nil {
		return fmt.Errorf("failed to initialize skirmish: %w", err)
	}
	if err := s.deploy(); err != nil {
		return fmt.Errorf("failed to deploy battalions: %w", err)
	}

	s.system.OnInitGame()
	s.reportFormations()

	err := s.runLoop(ctx)
	s.reportStatus()
	s.reporter.PrintSummary()
	return err
}

func (s *Skirmish) initialize() error {
	var (
		set *templates.Set
		err error
	)
	if s.cfg.Templates.Path != "" {
		set, err = templates.LoadFile(s.cfg.Templates.Path)
	} else {
		set, err = BuiltinTemplates()
	}
	if err != nil {
		return err
	}

	s.world = world.New(set, world.Config{
		MaxSpawnRings:       s.cfg.World.MaxSpawnRings,
		DefaultSpawnSpacing: s.cfg.World.DefaultSpawnSpacing,
	})
	s.system = battalion.NewSystem(s.world)
	s.world.RegisterHandler(s.system)

	s.reporter = reporting.NewReporter()
	s.reporter.SetQuiet(s.cfg.Logging.Quiet)

	seed := s.cfg.Defaults.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.rng = rand.New(rand.NewSource(seed))
	s.log.WithField("run", s.reporter.RunID()).Infof("Random seed %d", seed)

	s.armies = s.armies[:0]
	for _, p := range s.cfg.Players {
		player := world.Player{ID: engine.PlayerID(p.ID), Name: p.Name, Civ: p.Civ}
		s.world.AddPlayer(player)
		s.armies = append(s.armies, &army{
			player: player,
			origin: engine.Point{X: p.Origin.X, Z: p.Origin.Z},
		})
	}
	for i, a := range s.armies {
		a.enemy = s.armies[(i+1)%len(s.armies)]
	}
	return nil
}

// deploy places the leaders of every army and hands them to their players
func (s *Skirmish) deploy() error {
	for i, a := range s.armies {
		p := s.cfg.Players[i]
		name := templates.ResolveName(s.cfg.BattalionTemplateFor(p), p.Civ, p.Civ)

		for n := 0; n < s.cfg.Defaults.NumBattalions; n++ {
			leader, err := s.world.AddEntity(name)
			if err != nil {
				return err
			}
			pos := engine.Point{X: a.origin.X + float64(n)*s.cfg.Defaults.BattalionSpacing, Z: a.origin.Z}
			s.world.JumpTo(leader, pos)
			s.world.SetYRotation(leader, pos.HorizAngleTo(a.enemy.origin))

			if p.PrePlaced {
				s.placeRoster(a, leader)
			}
			// an owned leader with an empty roster spawns its members
			s.world.SetOwner(leader, a.player.ID)
			a.leaders = append(a.leaders, leader)

			b, ok := s.system.Battalion(leader)
			if !ok {
				return fmt.Errorf("template %s has no battalion section", name)
			}
			unit := s.world.ResolveTemplateName(b.TemplateName(), leader)
			s.reporter.LogSpawn(a.player.Name, leader, unit, len(b.GetMembers()))
			a.raised += len(b.GetMembers())

			s.mu.Lock()
			s.stats.Battalions++
			s.stats.Raised += len(b.GetMembers())
			s.mu.Unlock()
		}
	}
	return nil
}

// placeRoster hand-places the members of an unowned leader
func (s *Skirmish) placeRoster(a *army, leader engine.EntityID) {
	b, ok := s.system.Battalion(leader)
	if !ok {
		return
	}
	unit := s.world.ResolveTemplateName(b.TemplateName(), leader)

	var members []engine.EntityID
	for i := 0; i < b.NumberOfUnits(); i++ {
		ent, err := s.world.AddEntity(unit)
		if err != nil {
			s.log.Warnf("Could not place %s: %v", unit, err)
			break
		}
		pos, ok := s.world.PickSpawnPoint(leader, ent)
		if !ok {
			s.world.DestroyEntity(ent)
			break
		}
		s.world.JumpTo(ent, pos)
		s.world.SetOwner(ent, a.player.ID)
		members = append(members, ent)
	}
	b.SetMembers(members)
}

func (s *Skirmish) runLoop(ctx context.Context) error {
	s.log.Info("Starting skirmish loop...")

	ticker := time.NewTicker(s.cfg.Simulation.TickInterval)
	defer ticker.Stop()

	for tick := 1; tick <= s.cfg.Simulation.Ticks; {
		select {
		case <-ctx.Done():
			s.log.Info("Skirmish cancelled by context")
			return ctx.Err()

		case <-s.stopChan:
			s.log.Info("Skirmish stopped by user")
			return nil

		case <-ticker.C:
			s.reporter.SetTick(tick)
			s.executeTick()

			s.mu.Lock()
			s.stats.Ticks = tick
			s.mu.Unlock()

			if tick%statusEvery == 0 {
				s.reportStatus()
			}
			if a := s.defeatedArmy(); a != nil {
				logger.Successf("%s has no battalion members left after %d ticks", a.player.Name, tick)
				return nil
			}
			tick++
		}
	}

	logger.Successf("Skirmish completed after %d ticks", s.cfg.Simulation.Ticks)
	return nil
}

func (s *Skirmish) executeTick() {
	for _, a := range s.armies {
		for _, leader := range a.leaders {
			s.resolveLosses(a, leader)
		}
	}
	for _, a := range s.armies {
		for _, leader := range a.leaders {
			s.reportEngagement(a, leader)
		}
	}
}

// resolveLosses rolls for one casualty or capture in the battalion of leader
func (s *Skirmish) resolveLosses(a *army, leader engine.EntityID) {
	b, ok := s.system.Battalion(leader)
	if !ok {
		return
	}
	members := b.GetMembers()
	if len(members) == 0 {
		return
	}

	roll := s.rng.Float64()
	casualty := s.cfg.Defaults.CasualtyChance
	capture := casualty + s.cfg.Defaults.CaptureChance
	if roll >= capture {
		return
	}

	member := members[s.rng.Intn(len(members))]
	if roll < casualty {
		s.world.DestroyEntity(member)
		s.reporter.LogCasualty(a.player.Name, leader, member, len(b.GetMembers()))
		s.mu.Lock()
		s.stats.Casualties++
		s.mu.Unlock()
	} else {
		s.world.SetOwner(member, a.enemy.player.ID)
		s.reporter.LogCapture(a.player.Name, a.enemy.player.Name, leader, member, len(b.GetMembers()))
		s.mu.Lock()
		s.stats.Captures++
		s.mu.Unlock()
	}

	if len(b.GetMembers()) == 0 {
		if s.world.IsInvincible(leader) {
			s.log.Warnf("Battalion %d is empty but its leader is still shielded", leader)
		}
		s.reporter.LogDepleted(a.player.Name, leader)
		s.mu.Lock()
		s.stats.Depleted++
		s.mu.Unlock()
	}
}

// reportEngagement reports the formation answers of a battalion against the
// first enemy leader
func (s *Skirmish) reportEngagement(a *army, leader engine.EntityID) {
	b, ok := s.system.Battalion(leader)
	if !ok || len(b.GetMembers()) == 0 || len(a.enemy.leaders) == 0 {
		return
	}
	fa, ok := s.system.FormationAttack(b.GetFormationEntity())
	if !ok {
		return
	}
	target := a.enemy.leaders[0]
	rng := fa.GetRange(target)
	pref, hasPref := fa.GetPreference(target)
	s.reporter.LogRange(a.player.Name, leader, rng, pref, hasPref, fa.CanAttackAsFormation())
}

func (s *Skirmish) reportFormations() {
	for _, a := range s.armies {
		for _, leader := range a.leaders {
			b, ok := s.system.Battalion(leader)
			if !ok || !b.GetFormationEntity().Valid() {
				continue
			}
			s.reporter.LogFormation(a.player.Name, leader, b.GetFormationEntity(), len(b.GetMembers()))
		}
	}
}

func (s *Skirmish) reportStatus() {
	remaining := make(map[string]int, len(s.armies))
	for _, a := range s.armies {
		members, alive := 0, 0
		for _, leader := range a.leaders {
			b, ok := s.system.Battalion(leader)
			if !ok {
				continue
			}
			members += len(b.GetMembers())
			if len(b.GetMembers()) > 0 {
				alive++
			}
		}
		remaining[a.player.Name] = members

		s.reporter.LogStatus(a.player.Name, alive, members, a.raised-members)
		s.reporter.UpdateMetric(a.player.Name+"_members", float64(members), "units")
	}

	s.mu.Lock()
	s.stats.Remaining = remaining
	s.mu.Unlock()
}

// defeatedArmy returns the first army whose battalions are all empty
func (s *Skirmish) defeatedArmy() *army {
	for _, a := range s.armies {
		empty := true
		for _, leader := range a.leaders {
			if b, ok := s.system.Battalion(leader); ok && len(b.GetMembers()) > 0 {
				empty = false
				break
			}
		}
		if empty {
			return a
		}
	}
	return nil
}

// Stats returns a snapshot of the run counters
func (s *Skirmish) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := s.stats
	stats.Remaining = make(map[string]int, len(s.stats.Remaining))
	for k, v := range s.stats.Remaining {
		stats.Remaining[k] = v
	}
	return stats
}

// Stop gracefully shuts down the simulation
func (s *Skirmish) Stop() error {
	select {
	case <-s.stopChan:
		// Already closed
	default:
		close(s.stopChan)
	}
	return nil
}

// init registers the simulation
func init() {
	if err := simulation.DefaultRegistry.Register(SimulationName, NewSkirmish); err != nil {
		logger.Errorf("Failed to register skirmish simulation: %v", err)
	}
}
