package world

import (
	"context"
	"time"
)

// TickInterval is the vanilla simulation step (20 Hz).
const TickInterval = 50 * time.Millisecond

// maxBurstTicks bounds fixed-tick catch-up after a stall (e.g. a GC pause or
// a blocked write loop): run at most this many fixed passes back-to-back,
// then drop the rest rather than spiral trying to catch up.
const maxBurstTicks = 10

// System is one schedule-runner step. Systems run in slice order within a
// single schedule pass and share the same locked World.
type System func(*World, *EventBus)

// Scheduler drives two schedules: Fixed (every tick, burst-catch-up bounded)
// and Update (on-demand, coalesced by signal).
// Grounded on azalea-client's start_ecs_runner/run_schedule_loop/
// tick_run_schedule_loop, adapted from a bevy_ecs schedule graph to a
// plain ordered slice of System funcs.
type Scheduler struct {
	world *World
	bus   *EventBus

	fixedSystems  []System
	updateSystems []System

	signal chan struct{}

	tickCount uint64
}

// NewScheduler builds a scheduler over world, emitting events on bus.
// fixedSystems run every tick, after which a Tick event is emitted (the
// client passes the pathfinder executor and movement output);
// updateSystems run once per coalesced signal drain (the client passes
// packet dispatch and disconnect handling).
func NewScheduler(w *World, bus *EventBus, fixedSystems, updateSystems []System) *Scheduler {
	return &Scheduler{
		world:         w,
		bus:           bus,
		fixedSystems:  fixedSystems,
		updateSystems: updateSystems,
		signal:        make(chan struct{}, 1),
	}
}

// RaiseSignal requests an Update schedule run at the next opportunity. Safe
// to call from any goroutine (read loop, write loop, user API calls); sends
// never block because the channel is coalesced (buffer of 1, non-blocking
// send).
func (s *Scheduler) RaiseSignal() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Run is the tick loop: a 20 Hz ticker that runs the Fixed schedule (with
// bounded burst catch-up) and, interleaved, drains the run-schedule signal
// to execute the Update schedule. It returns when ctx is canceled, which is
// the disconnect path's sole shutdown mechanism.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	next := time.Now().Add(TickInterval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-ticker.C:
			burst := 0
			for now.After(next) && burst < maxBurstTicks {
				s.runFixed()
				next = next.Add(TickInterval)
				burst++
			}
			if burst == maxBurstTicks {
				// dropped ticks: resynchronize rather than spiral further behind.
				next = now.Add(TickInterval)
			}
			s.RaiseSignal()

		case <-s.signal:
			s.runUpdate()
		}
	}
}

func (s *Scheduler) runFixed() {
	s.world.Lock()
	defer s.world.Unlock()

	s.tickCount++
	for _, sys := range s.fixedSystems {
		sys(s.world, s.bus)
	}
	s.bus.Emit(Event{Kind: EventTick, Payload: TickPayload{Count: s.tickCount}})
}

func (s *Scheduler) runUpdate() {
	s.world.Lock()
	defer s.world.Unlock()

	for _, sys := range s.updateSystems {
		sys(s.world, s.bus)
	}
}

// TickCount returns the number of Fixed passes executed so far.
func (s *Scheduler) TickCount() uint64 { return s.tickCount }
