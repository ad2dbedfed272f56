package battalion

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/picogrid/legion-battalions/pkg/engine"
	"github.com/picogrid/legion-battalions/pkg/logger"
)

// Battalion lifecycle states
const (
	StateUnconfigured = "unconfigured"
	StateConfigured   = "configured"
	StatePopulated    = "populated"
	StateAssembled    = "assembled"
	StateEmpty        = "empty"
)

const (
	eventConfigure = "configure"
	eventPopulate  = "populate"
	eventAssemble  = "assemble"
	eventDetach    = "detach"
	eventDeplete   = "deplete"
)

func newLifecycle(ent engine.EntityID, log logger.Logger) *fsm.FSM {
	return fsm.NewFSM(
		StateUnconfigured,
		fsm.Events{
			{Name: eventConfigure, Src: []string{StateUnconfigured}, Dst: StateConfigured},
			{Name: eventPopulate, Src: []string{StateConfigured, StateEmpty}, Dst: StatePopulated},
			{Name: eventAssemble, Src: []string{StateConfigured, StatePopulated, StateEmpty}, Dst: StateAssembled},
			{Name: eventDetach, Src: []string{StateAssembled}, Dst: StatePopulated},
			{Name: eventDeplete, Src: []string{StatePopulated, StateAssembled}, Dst: StateEmpty},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Debugf("battalion %d: %s -> %s", ent, e.Src, e.Dst)
			},
		},
	)
}

// targetEvent picks the event moving the battalion towards the state implied
// by its roster and formation binding
func (b Battalion) targetEvent() string {
	switch {
	case len(b.rec.entities) == 0:
		return eventDeplete
	case b.rec.formationEntity.Valid():
		return eventAssemble
	case b.rec.state.Current() == StateAssembled:
		return eventDetach
	default:
		return eventPopulate
	}
}

// syncState advances the lifecycle after a roster or formation mutation and
// keeps the leader shielded exactly while the roster is non-empty
func (b Battalion) syncState() {
	b.fire(b.targetEvent())
	b.sys.host.SetInvincible(b.ent, len(b.rec.entities) > 0)
}

// fire runs ev when the current state allows it
func (b Battalion) fire(ev string) {
	if !b.rec.state.Can(ev) {
		return
	}
	if err := b.rec.state.Event(context.Background(), ev); err != nil {
		b.sys.log.Debugf("battalion %d: %s: %v", b.ent, ev, err)
	}
}
