package world

import "sync"

const (
	sectionWidth = 16
	sectionCount = 24 // sections per column for the overworld build range; fixed, not configurable per world.
	minSectionY  = -4 // overworld floor at y=-64 -> section index -4 (y=-64..-49)
)

// Section is one 16x16x16 palette-decoded block-state array, stored as
// flattened global state ids (y*256 + z*16 + x) after paletted-container
// decode (see section.go). A nil Section means "not yet decoded / air".
type Section struct {
	States [sectionWidth * sectionWidth * sectionWidth]int32
}

func (s *Section) stateAt(x, y, z int) int32 {
	return s.States[(y*sectionWidth+z)*sectionWidth+x]
}

// Column is a vertical stack of sections for one chunk coordinate.
type Column struct {
	Sections [sectionCount]*Section
}

// Instance is the world's chunked terrain store: a mapping from chunk
// coordinate to column. Multiple clients in the same dimension may share one
// Instance; the World wrapping it is what's locked for mutation.
type Instance struct {
	mu      sync.Mutex
	columns map[ChunkPos]*Column
	query   BlockQuery
	minY    int32
}

func NewInstance() *Instance {
	return &Instance{
		columns: make(map[ChunkPos]*Column),
		query:   DefaultBlockQuery(),
		minY:    int32(minSectionY) * sectionWidth,
	}
}

// SetBlockQuery installs the embedder-supplied block classification. It is
// read on every block query, so it takes effect at once, for chunks already
// loaded as well.
func (in *Instance) SetBlockQuery(q BlockQuery) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.query = q
}

// LoadColumn installs a fully-decoded column, replacing any column already
// present at that coordinate (a resend of a previously-loaded chunk).
func (in *Instance) LoadColumn(pos ChunkPos, col *Column) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.columns[pos] = col
}

// UnloadColumn drops a column the server has told the client to forget.
func (in *Instance) UnloadColumn(pos ChunkPos) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.columns, pos)
}

// IsLoaded reports whether the column containing p has been received.
func (in *Instance) IsLoaded(p BlockPos) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	_, ok := in.columns[p.ChunkPos()]
	return ok
}

// BlockStateAt returns the global block-state id at p, and whether the
// containing chunk section is loaded. Unloaded positions report ok=false;
// callers (the move generator) must treat those as "unknown, not passable".
func (in *Instance) BlockStateAt(p BlockPos) (stateID int32, ok bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	col, ok := in.columns[p.ChunkPos()]
	if !ok {
		return 0, false
	}
	secIdx := int((p.Y - in.minY) / sectionWidth)
	if secIdx < 0 || secIdx >= sectionCount {
		return 0, false
	}
	sec := col.Sections[secIdx]
	if sec == nil {
		return 0, true // decoded as all-air section
	}

	localX := mod16(p.X)
	localY := mod16(p.Y - in.minY)
	localZ := mod16(p.Z)
	return sec.stateAt(localX, localY, localZ), true
}

func mod16(v int32) int {
	m := v % 16
	if m < 0 {
		m += 16
	}
	return int(m)
}

// blockQuery returns the installed BlockQuery, read under in.mu.
func (in *Instance) blockQuery() BlockQuery {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.query
}

// IsStandable reports whether an entity can stand at p: the block at p is
// solid, and the two blocks above are passable.
func (w *World) IsStandable(p BlockPos) bool {
	q := w.Instance.blockQuery()

	below, ok := w.Instance.BlockStateAt(p)
	if !ok {
		return false
	}
	if !q.IsSolid(below) {
		return false
	}
	for i := int32(1); i <= 2; i++ {
		st, ok := w.Instance.BlockStateAt(p.Up(i))
		if !ok || !q.IsPassable(st) {
			return false
		}
	}
	return true
}

// IsPassable reports whether an entity may occupy p without colliding or
// taking hazard damage.
func (w *World) IsPassable(p BlockPos) bool {
	q := w.Instance.blockQuery()
	st, ok := w.Instance.BlockStateAt(p)
	if !ok {
		return false
	}
	return q.IsPassable(st) && !q.IsHazardous(st)
}

// IsBlockPassable reports passability ignoring the hazard check, matching
// azalea's is_block_passable (used by the Ascend precondition, which only
// cares about headroom, not whether the headroom is lava).
func (w *World) IsBlockPassable(p BlockPos) bool {
	q := w.Instance.blockQuery()
	st, ok := w.Instance.BlockStateAt(p)
	if !ok {
		return false
	}
	return q.IsPassable(st)
}

// FallDistance returns how many blocks directly below p (exclusive) are
// passable before hitting a solid block, capped at 4 (anything higher is
// reported as 0, matching basic.rs's descend_move which rejects falls > 3).
func (w *World) FallDistance(p BlockPos) int {
	for d := int32(1); d <= 4; d++ {
		below := p.Down(d)
		st, ok := w.Instance.BlockStateAt(below)
		if !ok {
			return 0
		}
		q := w.Instance.blockQuery()
		if q.IsSolid(st) {
			return int(d - 1)
		}
	}
	return 0
}
