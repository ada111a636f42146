package pathfinder

import (
	"math"

	"github.com/go-mclib/bot/world"
)

// edgesFrom produces every candidate edge out of node, the union of the four
// move families. Grounded on basic_move/forward_move/ascend_move/
// descend_move/diagonal_move in moves/basic.rs.
func edgesFrom(w *world.World, node world.BlockPos) []world.Edge {
	var edges []world.Edge
	edges = append(edges, forwardMoves(w, node)...)
	edges = append(edges, ascendMoves(w, node)...)
	edges = append(edges, descendMoves(w, node)...)
	edges = append(edges, diagonalMoves(w, node)...)
	return edges
}

func forwardMoves(w *world.World, pos world.BlockPos) []world.Edge {
	var edges []world.Edge
	for _, dir := range world.CardinalDirections {
		target := pos.Add(dir)
		if !w.IsStandable(target) {
			continue
		}
		edges = append(edges, world.Edge{
			Kind:      world.MoveForward,
			Target:    target,
			Cost:      SprintOneBlockCost,
			Execute:   executeForwardMove,
			IsReached: defaultIsReached,
		})
	}
	return edges
}

func executeForwardMove(ctx *world.ExecuteCtx) {
	ctx.LookAt(ctx.Target.Center())
	ctx.StartSprint(world.WalkForward)
}

func defaultIsReached(ctx *world.IsReachedCtx) bool {
	return ctx.Position.BlockPos() == ctx.Target
}

func ascendMoves(w *world.World, pos world.BlockPos) []world.Edge {
	var edges []world.Edge
	for _, dir := range world.CardinalDirections {
		offset := world.BlockPos{X: dir.X, Y: 1, Z: dir.Z}
		target := pos.Add(offset)

		if !w.IsBlockPassable(pos.Up(2)) {
			continue
		}
		if !w.IsStandable(target) {
			continue
		}
		edges = append(edges, world.Edge{
			Kind:      world.MoveAscend,
			Target:    target,
			Cost:      SprintOneBlockCost + JumpOneBlockCost,
			Execute:   executeAscendMove,
			IsReached: ascendIsReached,
		})
	}
	return edges
}

func executeAscendMove(ctx *world.ExecuteCtx) {
	targetCenter := ctx.Target.Center()
	ctx.LookAt(targetCenter)
	ctx.StartWalk(world.WalkForward)

	xAxis := math.Abs(float64(ctx.Start.X - ctx.Target.X))
	zAxis := math.Abs(float64(ctx.Start.Z - ctx.Target.Z))

	flatDistanceToNext := xAxis*(targetCenter.X-ctx.Position.X) + zAxis*(targetCenter.Z-ctx.Position.Z)
	sideDistance := zAxis*math.Abs(targetCenter.X-ctx.Position.X) + xAxis*math.Abs(targetCenter.Z-ctx.Position.Z)

	lateralMotion := xAxis*ctx.Physics.Delta.Z + zAxis*ctx.Physics.Delta.X
	if lateralMotion > 0.1 {
		return
	}
	if flatDistanceToNext > 1.2 || sideDistance > 0.2 {
		return
	}
	ctx.Jump()
}

func ascendIsReached(ctx *world.IsReachedCtx) bool {
	p := ctx.Position.BlockPos()
	return p == ctx.Target || p == ctx.Target.Down(1)
}

func descendMoves(w *world.World, pos world.BlockPos) []world.Edge {
	var edges []world.Edge
	for _, dir := range world.CardinalDirections {
		horizontal := pos.Add(dir)
		// Nodes are floor blocks, so the scan starts one above horizontal:
		// horizontal itself counts, and a one-block drop reports 1.
		fallDistance := w.FallDistance(horizontal.Up(1))
		if fallDistance == 0 || fallDistance > 3 {
			continue
		}
		target := horizontal.Down(int32(fallDistance))

		if !w.IsPassable(horizontal) {
			continue
		}
		if !w.IsStandable(target) {
			continue
		}

		edges = append(edges, world.Edge{
			Kind:      world.MoveDescend,
			Target:    target,
			Cost:      SprintOneBlockCost + FallOneBlockCost*float64(fallDistance),
			Execute:   executeDescendMove,
			IsReached: descendIsReached,
		})
	}
	return edges
}

func destAhead(start, target world.BlockPos) world.BlockPos {
	return world.BlockPos{
		X: start.X + (target.X-start.X)*2,
		Y: target.Y,
		Z: start.Z + (target.Z-start.Z)*2,
	}
}

func executeDescendMove(ctx *world.ExecuteCtx) {
	center := ctx.Target.Center()
	horizontalDistanceFromTarget := horizontalDistance(center, ctx.Position)
	horizontalDistanceFromStart := horizontalDistance(ctx.Start.Center(), ctx.Position)

	ahead := destAhead(ctx.Start, ctx.Target)

	if ctx.Position.BlockPos() == ctx.Target && horizontalDistanceFromTarget <= 0.25 {
		return
	}

	if horizontalDistanceFromStart < 1.25 || ctx.Start.Y-ctx.Target.Y == 1 {
		ctx.LookAt(ahead.Center())
	} else {
		ctx.LookAt(center)
	}
	ctx.StartSprint(world.WalkForward)
}

func horizontalDistance(a, b world.Position) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

func descendIsReached(ctx *world.IsReachedCtx) bool {
	ahead := destAhead(ctx.Start, ctx.Target)
	p := ctx.Position.BlockPos()
	return (p == ctx.Target || p == ahead) && (ctx.Position.Y-float64(ctx.Target.Y)) < 0.5
}

func diagonalMoves(w *world.World, pos world.BlockPos) []world.Edge {
	var edges []world.Edge
	for _, dir := range world.CardinalDirections {
		right := dir.Right()
		offset := world.BlockPos{X: dir.X + right.X, Y: 0, Z: dir.Z + right.Z}
		target := pos.Add(offset)

		// pos itself is the solid floor block a standable node sits on, so the
		// corner check for a clipping-free cut has to look at the headroom
		// tile the player's feet actually pass through, one block up from
		// each adjacent floor cell (not the floor cells themselves, which
		// are solid ground by construction).
		cardinalClear := w.IsPassable(world.BlockPos{X: pos.X + dir.X, Y: pos.Y + 1, Z: pos.Z + dir.Z})
		cornerClear := w.IsPassable(world.BlockPos{X: pos.X + right.X, Y: pos.Y + 1, Z: pos.Z + right.Z})
		if !cardinalClear && !cornerClear {
			continue
		}
		if !w.IsStandable(target) {
			continue
		}

		edges = append(edges, world.Edge{
			Kind:      world.MoveDiagonal,
			Target:    target,
			Cost:      SprintOneBlockCost*math.Sqrt2 + 0.001,
			Execute:   executeForwardMove,
			IsReached: defaultIsReached,
		})
	}
	return edges
}
