package battalion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/legion-battalions/pkg/engine"
)

const (
	leaderTemplate    = "units/athen_leader"
	spearmanTemplate  = "units/athen_spearman"
	lineTemplate      = "formations/line"
	player1           = engine.PlayerID(1)
	player2           = engine.PlayerID(2)
	battalionStrength = 4
)

func spawnLeader(t *testing.T, h *fakeHost) Battalion {
	t.Helper()
	leader := h.spawn(leaderTemplate, engine.Point{}, player1)
	b, ok := h.sys.Battalion(leader)
	require.True(t, ok)
	return b
}

func TestBattalionSpawnsOnFirstOwnership(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)

	members := b.GetMembers()
	require.Len(t, members, battalionStrength)
	assert.Equal(t, StatePopulated, b.State())
	assert.True(t, h.IsInvincible(b.Entity()))

	for i, m := range members {
		assert.Equal(t, player1, h.Owner(m))
		assert.Equal(t, spearmanTemplate, h.CurrentTemplateName(m))

		pos, ok := h.Position(m)
		require.True(t, ok)
		assert.Equal(t, engine.Point{X: float64(i + 1)}, pos)
		assert.InDelta(t, math.Pi/2, h.units[m].rotation, 1e-9)

		member, ok := h.sys.BattalionMember(m)
		require.True(t, ok)
		assert.Equal(t, engine.InvalidEntity, member.GetLeader(), "back-references wait for the formation")
	}
	assert.Equal(t, engine.InvalidEntity, b.GetFormationEntity())
}

func TestBattalionDoesNotRespawn(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)

	h.SetOwner(b.Entity(), player2)
	h.SetOwner(b.Entity(), engine.PlayerID(3))
	h.SetOwner(b.Entity(), player1)

	assert.Len(t, b.GetMembers(), battalionStrength)
	assert.Len(t, h.ownedBy(player1, spearmanTemplate), battalionStrength)
}

func TestDepletedBattalionDoesNotRespawnOnReclaim(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)
	h.sys.OnInitGame()

	for _, m := range b.GetMembers() {
		h.DestroyEntity(m)
	}
	require.Empty(t, b.GetMembers())
	require.Equal(t, StateEmpty, b.State())

	h.SetOwner(b.Entity(), engine.InvalidPlayer)
	h.SetOwner(b.Entity(), player2)

	assert.Empty(t, b.GetMembers())
	assert.Equal(t, StateEmpty, b.State())
	assert.Empty(t, h.ownedBy(player2, spearmanTemplate))
	assert.False(t, h.IsInvincible(b.Entity()))
}

func TestBattalionIgnoresOwnershipLoss(t *testing.T) {
	h := newFakeHost(t)
	leader, err := h.AddEntity(leaderTemplate)
	require.NoError(t, err)
	h.JumpTo(leader, engine.Point{})

	b, ok := h.sys.Battalion(leader)
	require.True(t, ok)
	assert.Equal(t, StateConfigured, b.State())

	h.sys.OnOwnershipChanged(engine.OwnershipChanged{Entity: leader, From: player1, To: engine.InvalidPlayer})
	assert.Empty(t, b.GetMembers())
}

func TestInitGameCreatesFormation(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)
	roster := b.GetMembers()

	h.sys.OnInitGame()

	ctrl := b.GetFormationEntity()
	require.True(t, ctrl.Valid())
	assert.Equal(t, lineTemplate, h.CurrentTemplateName(ctrl))
	assert.Equal(t, player1, h.Owner(ctrl))
	assert.Equal(t, StateAssembled, b.State())

	f, ok := h.sys.Formation(ctrl)
	require.True(t, ok)
	assert.Equal(t, append(roster, b.Entity()), f.GetMembers())

	for _, m := range roster {
		member, ok := h.sys.BattalionMember(m)
		require.True(t, ok)
		assert.Equal(t, b.Entity(), member.GetLeader())
	}
}

func TestCreateFormationIsIdempotent(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)

	first := b.CreateFormation()
	second := b.CreateFormation()

	assert.Equal(t, first, second)
	assert.Len(t, h.ownedBy(player1, lineTemplate), 1)
	assert.Len(t, b.GetMembers(), battalionStrength)

	f, ok := h.sys.Formation(first)
	require.True(t, ok)
	assert.Equal(t, append(b.GetMembers(), b.Entity()), f.GetMembers())
}

func TestCreateFormationRebuildsDestroyedController(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)

	first := b.CreateFormation()
	h.DestroyEntity(first)
	second := b.CreateFormation()

	assert.NotEqual(t, first, second)
	assert.True(t, h.Exists(second))
	assert.Equal(t, second, b.GetFormationEntity())
}

func TestCreateFormationSpawnsEmptyRoster(t *testing.T) {
	h := newFakeHost(t)
	leader, err := h.AddEntity(leaderTemplate)
	require.NoError(t, err)
	h.JumpTo(leader, engine.Point{})
	b, _ := h.sys.Battalion(leader)

	ctrl := b.CreateFormation()

	require.True(t, ctrl.Valid())
	members := b.GetMembers()
	require.Len(t, members, battalionStrength)
	for _, m := range members {
		assert.Equal(t, engine.InvalidPlayer, h.Owner(m), "members take the leader's owner")
		member, _ := h.sys.BattalionMember(m)
		assert.Equal(t, leader, member.GetLeader())
	}
}

func TestOwnershipAfterGameStartAssembles(t *testing.T) {
	h := newFakeHost(t)
	h.sys.OnInitGame()
	require.True(t, h.sys.GameStarted())

	b := spawnLeader(t, h)

	assert.Len(t, b.GetMembers(), battalionStrength)
	assert.True(t, b.GetFormationEntity().Valid())
	assert.Equal(t, StateAssembled, b.State())
}

func TestCapturedMemberLeavesBattalion(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)
	h.sys.OnInitGame()
	roster := b.GetMembers()
	captured := roster[1]

	h.SetOwner(captured, player2)

	assert.Equal(t, []engine.EntityID{roster[0], roster[2], roster[3]}, b.GetMembers())
	f, _ := h.sys.Formation(b.GetFormationEntity())
	assert.False(t, f.HasMember(captured))
	assert.True(t, f.HasMember(b.Entity()))

	member, ok := h.sys.BattalionMember(captured)
	require.True(t, ok)
	assert.Equal(t, b.Entity(), member.GetLeader(), "captured members keep a stale leader")

	h.SetOwner(captured, player1)
	assert.Len(t, b.GetMembers(), battalionStrength-1, "recaptured members do not rejoin")
}

func TestDestroyingEveryMemberLiftsShield(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)
	h.sys.OnInitGame()
	require.True(t, h.IsInvincible(b.Entity()))

	for i, m := range b.GetMembers() {
		h.DestroyEntity(m)
		if i < battalionStrength-1 {
			assert.True(t, h.IsInvincible(b.Entity()))
		}
	}

	assert.Empty(t, b.GetMembers())
	assert.False(t, h.IsInvincible(b.Entity()))
	assert.Equal(t, StateEmpty, b.State())

	f, _ := h.sys.Formation(b.GetFormationEntity())
	assert.Equal(t, []engine.EntityID{b.Entity()}, f.GetMembers())
}

func TestSpawnStopsWithoutSpawnPoint(t *testing.T) {
	h := newFakeHost(t)
	h.spawnPoints = 2

	b := spawnLeader(t, h)

	members := b.GetMembers()
	assert.Len(t, members, 2)
	require.Len(t, h.destroyed, 1)
	assert.False(t, h.Exists(h.destroyed[0]))
	assert.NotContains(t, members, h.destroyed[0])
	_, ok := h.sys.BattalionMember(h.destroyed[0])
	assert.False(t, ok)
}

func TestSpawnUnknownMemberTemplate(t *testing.T) {
	h := newFakeHost(t)
	leader := h.spawn("units/athen_broken_leader", engine.Point{}, player1)
	b, ok := h.sys.Battalion(leader)
	require.True(t, ok)

	assert.Empty(t, b.GetMembers())
	assert.Equal(t, StateConfigured, b.State())
	assert.False(t, h.IsInvincible(leader))
}

func TestCreateFormationSkipsNonMembers(t *testing.T) {
	h := newFakeHost(t)
	leader := h.spawn("units/athen_peasant_leader", engine.Point{}, player1)
	b, _ := h.sys.Battalion(leader)

	ctrl := b.CreateFormation()

	f, ok := h.sys.Formation(ctrl)
	require.True(t, ok)
	assert.Len(t, f.GetMembers(), 3)
	for _, m := range b.GetMembers() {
		_, ok := h.sys.BattalionMember(m)
		assert.False(t, ok)
	}
}

func TestSetMembersKeepsBackReferences(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)
	h.sys.OnInitGame()
	roster := b.GetMembers()

	b.SetMembers([]engine.EntityID{roster[0], roster[0], engine.InvalidEntity, roster[2]})

	assert.Equal(t, []engine.EntityID{roster[0], roster[2]}, b.GetMembers())
	member, _ := h.sys.BattalionMember(roster[1])
	assert.Equal(t, b.Entity(), member.GetLeader())

	b.SetMembers(nil)
	assert.False(t, h.IsInvincible(b.Entity()))
	assert.Equal(t, StateEmpty, b.State())
}

func TestGetMembersReturnsCopy(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)

	members := b.GetMembers()
	members[0] = engine.InvalidEntity

	assert.NotContains(t, b.GetMembers(), engine.InvalidEntity)
}

func TestRemoveUnknownMemberIsIgnored(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)

	b.RemoveMember(engine.EntityID(999))
	b.RemoveMember(b.Entity())

	assert.Len(t, b.GetMembers(), battalionStrength)
	assert.True(t, h.IsInvincible(b.Entity()))
}

func TestSetFormationEntity(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)
	ctrl := h.spawn(lineTemplate, engine.Point{}, player1)

	b.SetFormationEntity(ctrl)
	assert.Equal(t, ctrl, b.GetFormationEntity())
	assert.Equal(t, StateAssembled, b.State())

	f, _ := h.sys.Formation(ctrl)
	assert.Empty(t, f.GetMembers())

	b.SetFormationEntity(engine.InvalidEntity)
	assert.Equal(t, StatePopulated, b.State())
}

func TestDestroyedLeaderKeepsMembers(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)
	h.sys.OnInitGame()
	roster := b.GetMembers()

	h.DestroyEntity(b.Entity())

	_, ok := h.sys.Battalion(b.Entity())
	assert.False(t, ok)
	for _, m := range roster {
		assert.True(t, h.Exists(m))
	}

	// losing a member with a dead leader is a no-op
	h.DestroyEntity(roster[0])
	assert.False(t, h.Exists(roster[0]))
}

func TestBattalionConfiguration(t *testing.T) {
	h := newFakeHost(t)
	b := spawnLeader(t, h)

	assert.Equal(t, battalionStrength, b.NumberOfUnits())
	assert.Equal(t, "units/{native}_spearman", b.TemplateName())
	assert.Equal(t, leaderTemplate, b.LeaderTemplateName())
	assert.Equal(t, lineTemplate, b.SpawnFormationTemplate())
	assert.Equal(t, b.Entity(), b.GetLeader())
	assert.Equal(t, []engine.EntityID{b.Entity()}, h.sys.Battalions())
}

func TestMemberSetLeader(t *testing.T) {
	h := newFakeHost(t)
	ent, err := h.AddEntity(spearmanTemplate)
	require.NoError(t, err)

	m, ok := h.sys.BattalionMember(ent)
	require.True(t, ok)
	assert.Equal(t, ent, m.Entity())
	assert.Equal(t, engine.InvalidEntity, m.GetLeader())

	m.SetLeader(engine.EntityID(42))
	assert.Equal(t, engine.EntityID(42), m.GetLeader())

	// a dangling leader is tolerated when the member changes hands
	h.SetOwner(ent, player1)
	h.SetOwner(ent, player2)
	assert.Equal(t, player2, h.Owner(ent))
}
