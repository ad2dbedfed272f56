package skirmish

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/legion-battalions/pkg/battalion"
	"github.com/picogrid/legion-battalions/pkg/engine"
	"github.com/picogrid/legion-battalions/pkg/simulation"
)

func newTestSkirmish(t *testing.T, params map[string]interface{}) *Skirmish {
	t.Helper()
	base := map[string]interface{}{
		"num_battalions":  1,
		"ticks":           2,
		"tick_interval":   time.Millisecond,
		"capture_chance":  0.0,
		"casualty_chance": 0.0,
		"seed":            1,
		"quiet":           true,
		"log_level":       "error",
	}
	for k, v := range params {
		base[k] = v
	}

	s := NewSkirmish().(*Skirmish)
	require.NoError(t, s.Configure(base))
	return s
}

func TestRegistered(t *testing.T) {
	sim, err := simulation.DefaultRegistry.Get(SimulationName)
	require.NoError(t, err)
	assert.Equal(t, SimulationName, sim.Name())
}

func TestBuiltinTemplates(t *testing.T) {
	set, err := BuiltinTemplates()
	require.NoError(t, err)
	for _, name := range []string{
		"units/athen_battalion_spearmen",
		"units/spart_battalion_spearmen",
		"units/athen_battalion_slingers",
		"formations/phalanx",
	} {
		assert.True(t, set.Has(name), name)
	}
}

func TestRunRaisesAndAssemblesBattalions(t *testing.T) {
	s := newTestSkirmish(t, map[string]interface{}{"num_battalions": 2})
	require.NoError(t, s.Run(context.Background()))

	stats := s.Stats()
	assert.Equal(t, 2, stats.Ticks)
	assert.Equal(t, 4, stats.Battalions)
	assert.Equal(t, 32, stats.Raised)
	assert.Equal(t, map[string]int{"Athens": 16, "Sparta": 16}, stats.Remaining)

	for _, a := range s.armies {
		require.Len(t, a.leaders, 2)
		for _, leader := range a.leaders {
			b, ok := s.system.Battalion(leader)
			require.True(t, ok)
			assert.Equal(t, battalion.StateAssembled, s.system.State(leader))
			assert.True(t, s.world.IsInvincible(leader))

			f, ok := s.system.Formation(b.GetFormationEntity())
			require.True(t, ok)
			assert.ElementsMatch(t, append(b.GetMembers(), leader), f.GetMembers())
		}
	}
}

func TestRunEngagementReports(t *testing.T) {
	s := newTestSkirmish(t, map[string]interface{}{"ticks": 1})
	require.NoError(t, s.Run(context.Background()))

	ranges := map[string]string{}
	for _, e := range s.reporter.EventsOfType("range") {
		ranges[e.Player] = e.Message
	}
	// eight spearmen and the leader in a box of width 4: three ranks at spacing 2
	assert.Contains(t, ranges["Athens"], "range 0.0-6.0 preference 1 formation attack false")
	// eight hoplites and the leader in a phalanx of width 6: two ranks at spacing 1.5
	assert.Contains(t, ranges["Sparta"], "range 0.0-5.8 preference 0 formation attack true")
}

func TestRunPrePlacedRoster(t *testing.T) {
	s := newTestSkirmish(t, map[string]interface{}{"pre_placed": true, "ticks": 1})
	require.NoError(t, s.Run(context.Background()))

	athens := s.armies[0]
	require.Len(t, athens.leaders, 1)
	b, ok := s.system.Battalion(athens.leaders[0])
	require.True(t, ok)
	require.Len(t, b.GetMembers(), 8)

	for _, m := range b.GetMembers() {
		member, ok := s.system.BattalionMember(m)
		require.True(t, ok)
		assert.Equal(t, athens.leaders[0], member.GetLeader())
		assert.Equal(t, engine.PlayerID(1), s.world.Owner(m))
	}
}

func TestRunCasualtiesDepleteBattalions(t *testing.T) {
	s := newTestSkirmish(t, map[string]interface{}{
		"casualty_chance": 1.0,
		"ticks":           20,
	})
	require.NoError(t, s.Run(context.Background()))

	stats := s.Stats()
	assert.Equal(t, 8, stats.Ticks)
	assert.Equal(t, 16, stats.Casualties)
	assert.Equal(t, 2, stats.Depleted)

	for _, a := range s.armies {
		leader := a.leaders[0]
		assert.Equal(t, battalion.StateEmpty, s.system.State(leader))
		assert.False(t, s.world.IsInvincible(leader))
	}
}

func TestRunCapturesChangeOwner(t *testing.T) {
	s := newTestSkirmish(t, map[string]interface{}{
		"capture_chance": 1.0,
		"ticks":          1,
	})
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, 2, s.Stats().Captures)
	for _, a := range s.armies {
		b, ok := s.system.Battalion(a.leaders[0])
		require.True(t, ok)
		assert.Len(t, b.GetMembers(), 7)
		// leader, formation controller, seven members and one captured enemy
		assert.Len(t, s.world.EntitiesOwnedBy(a.player.ID), 10)
	}
}

func TestStopBeforeFirstTick(t *testing.T) {
	s := newTestSkirmish(t, map[string]interface{}{"tick_interval": time.Hour})
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 0, s.Stats().Ticks)
}

func TestRunCancelled(t *testing.T) {
	s := newTestSkirmish(t, map[string]interface{}{"tick_interval": time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

func TestConfigureRejectsBadScenario(t *testing.T) {
	s := NewSkirmish()
	err := s.Configure(map[string]interface{}{
		"capture_chance":  0.8,
		"casualty_chance": 0.8,
	})
	assert.Error(t, err)
}
