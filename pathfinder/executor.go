package pathfinder

import (
	"math"
	"time"

	"github.com/go-mclib/bot/world"
)

// Goto plans a path from the entity's current BlockPos to goal and installs
// it as the entity's active PathfinderState. Called from outside the
// schedule (a user API call); it takes World's lock itself, so callers must
// not already hold it.
func Goto(w *world.World, bus *world.EventBus, entity world.EntityID, goal world.Goal) {
	w.Lock()
	defer w.Unlock()

	pos, ok := w.Positions.Get(entity)
	if !ok {
		return
	}
	plan(w, bus, entity, pos.BlockPos(), goal)
}

func plan(w *world.World, bus *world.EventBus, entity world.EntityID, start world.BlockPos, goal world.Goal) {
	path, found := Search(w, start, goal)
	state := &world.PathfinderState{
		Goal:         goal,
		Origin:       start,
		Path:         path,
		Index:        0,
		LastNodeTime: tickTime(w),
		LastNode:     0,
	}
	w.Pathfinding.Set(entity, state)
	if !found {
		bus.Emit(world.Event{Kind: world.EventPathNotFound, Payload: world.PathNotFoundPayload{Entity: entity}})
	}
}

// Stop clears the entity's active path without emitting a failure event,
// used when a caller cancels navigation deliberately.
func Stop(w *world.World, entity world.EntityID) {
	w.Lock()
	defer w.Unlock()
	w.Pathfinding.Remove(entity)
}

// tickTime stands in for a monotonic "now" the fixed-tick loop can use
// without reaching for wall-clock time directly in hot systems; here it's
// just time.Now, kept as a named seam so tests can substitute a fake clock
// by constructing PathfinderState directly instead of through plan.
func tickTime(_ *world.World) time.Time { return time.Now() }

// ExecutorSystem is the Fixed-schedule system that drives every entity's
// active path one step per tick. It must run
// after whatever system updates Position/Physics for the tick, and before
// any system that flushes MovementIntent into outgoing packets.
func ExecutorSystem(w *world.World, bus *world.EventBus) {
	w.Pathfinding.Each(func(id world.EntityID, state *world.PathfinderState) {
		stepEntity(w, bus, id, state)
	})
}

func stepEntity(w *world.World, bus *world.EventBus, id world.EntityID, state *world.PathfinderState) {
	if state.Goal == nil || len(state.Path) == 0 {
		return
	}

	pos, ok := w.Positions.Get(id)
	if !ok {
		return
	}
	physics, _ := w.Physics.Get(id)

	if state.Index >= len(state.Path) {
		w.Pathfinding.Remove(id)
		return
	}

	edge := state.Path[state.Index]
	start := startOf(state, state.Index)

	// A descend edge is a planned fall; only flag a fall as an anomaly on
	// every other move family, where standing on open air was never
	// intended by the plan.
	if edge.Kind != world.MoveDescend && fallDamageImminent(w, pos) {
		w.Pathfinding.Remove(id)
		bus.Emit(world.Event{Kind: world.EventPathAborted, Payload: world.PathAbortedPayload{
			Entity: id,
			Reason: "fall damage imminent",
		}})
		return
	}

	if pathInvalidated(w, state) {
		plan(w, bus, id, pos.BlockPos(), state.Goal)
		return
	}

	ctx := &world.ExecuteCtx{
		Entity:   id,
		Position: pos,
		Physics:  physics,
		Start:    start,
		Target:   edge.Target,
		LookAt:   func(target world.Position) { lookAt(w, id, pos, target) },
		StartWalk: func(world.WalkDirection) {
			w.Movement.Set(id, world.MovementIntent{Forward: true, Sprinting: false})
		},
		StartSprint: func(world.WalkDirection) {
			w.Movement.Set(id, world.MovementIntent{Forward: true, Sprinting: true})
		},
		Jump: func() {
			m, _ := w.Movement.Get(id)
			m.JumpQueued = true
			w.Movement.Set(id, m)
		},
	}
	edge.Execute(ctx)

	reached := edge.IsReached(&world.IsReachedCtx{Position: pos, Start: start, Target: edge.Target})
	if reached {
		state.Index++
		state.LastNode = state.Index
		state.LastNodeTime = tickTime(w)
		if state.Index >= len(state.Path) && state.Goal.Reached(pos.BlockPos()) {
			w.Pathfinding.Remove(id)
		}
		return
	}

	if tickTime(w).Sub(state.LastNodeTime) > world.StuckThreshold {
		plan(w, bus, id, pos.BlockPos(), state.Goal)
	}
}

// startOf returns the BlockPos the edge at index i departs from: the
// previous edge's target, or the path's recorded origin for index 0.
func startOf(state *world.PathfinderState, i int) world.BlockPos {
	if i == 0 {
		return state.Origin
	}
	return state.Path[i-1].Target
}

// fallDamageImminent flags an unsafe drop directly below the entity: the
// block right below is open (not something to step down onto) and no solid
// ground turns up within FallDistance's own 4-block scan depth, which means
// either an unloaded chunk or a fall longer than the descend move ever plans
// for.
func fallDamageImminent(w *world.World, pos world.Position) bool {
	bp := pos.BlockPos()
	if !w.IsPassable(bp.Down(1)) {
		return false
	}
	return w.FallDistance(bp) == 0
}

// pathInvalidated reports whether a node still on the remaining path has
// stopped being standable since the path was planned, e.g. a block placed
// or broken mid-traversal, triggering a replan.
func pathInvalidated(w *world.World, state *world.PathfinderState) bool {
	for i := state.Index; i < len(state.Path); i++ {
		if !w.IsStandable(state.Path[i].Target) {
			return true
		}
	}
	return false
}

func lookAt(w *world.World, id world.EntityID, from world.Position, to world.Position) {
	dx := to.X - from.X
	dz := to.Z - from.Z
	dy := to.Y - from.Y

	yaw := math.Atan2(-dx, dz) * 180 / math.Pi
	horizontalDist := math.Sqrt(dx*dx + dz*dz)
	pitch := -math.Atan2(dy, horizontalDist) * 180 / math.Pi

	w.Rotations.Set(id, world.Rotation{Yaw: float32(yaw), Pitch: float32(pitch)})
}
