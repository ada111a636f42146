package pathfinder

import "github.com/go-mclib/bot/world"

// GoalNear is satisfied by any BlockPos at Target's Y level within Radius
// (inclusive, horizontal distance) of Target. Radius 0 requires landing
// exactly on Target.
// Grounded on azalea's GoalNear (pathfinder/goals.rs, not itself retrieved,
// but named directly by the scenario this mirrors).
type GoalNear struct {
	Target world.BlockPos
	Radius float64
}

func (g GoalNear) Reached(p world.BlockPos) bool {
	return p.HorizontalDistance(g.Target) <= g.Radius && p.Y == g.Target.Y
}

func (g GoalNear) Heuristic(p world.BlockPos) float64 {
	d := p.HorizontalDistance(g.Target) - g.Radius
	if d < 0 {
		return 0
	}
	return d
}

// GoalExact requires landing exactly on Target.
type GoalExact struct {
	Target world.BlockPos
}

func (g GoalExact) Reached(p world.BlockPos) bool {
	return p == g.Target
}

func (g GoalExact) Heuristic(p world.BlockPos) float64 {
	return p.HorizontalDistance(g.Target)
}
