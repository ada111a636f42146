// Package pathfinder implements A* search over world.BlockPos using the move
// vocabulary defined in the world package (world.Edge, world.Goal,
// world.ExecuteCtx), plus the per-tick executor system that drives an active
// path.
//
// Grounded on azalea's pathfinder module (moves/basic.rs, astar.rs, goals.rs,
// mod.rs), reworked from bevy_ecs events into world.System closures.
package pathfinder

// Move costs, in the same abstract units as horizontal block distance (one
// cardinal step of pure walking costs WalkOneBlockCost). None of these exact
// values were present in the retrieved reference sources (only the move
// preconditions in moves/basic.rs were retrieved, not the costs table); these
// are reasonable fixed approximations satisfying the required
// SprintOneBlockCost < WalkOneBlockCost relationship.
const (
	WalkOneBlockCost   = 1.0
	SprintOneBlockCost = 0.75
	JumpOneBlockCost   = 2.0
	FallOneBlockCost   = 0.5
)
