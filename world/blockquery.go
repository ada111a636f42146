package world

// BlockQuery classifies block-state ids. The actual block-state table
// (name, properties, which ids are which blocks) is out of scope per the
// library's purpose, treated as static data supplied by the embedding
// program, so the world and pathfinder packages depend only on this
// interface rather than a concrete registry.
type BlockQuery interface {
	// IsSolid reports whether an entity collides with (cannot pass through)
	// the given block state, e.g. stone, dirt, a closed door.
	IsSolid(stateID int32) bool
	// IsPassable reports whether an entity can occupy the block's space
	// without colliding. Hazards are reported separately by IsHazardous.
	IsPassable(stateID int32) bool
	// IsHazardous reports whether standing in or touching the block causes
	// damage (lava, fire, cactus, magma...).
	IsHazardous(stateID int32) bool
}

// allAirBlockQuery treats every state id as empty air: useful as a
// zero-value default so a World is usable before the embedder supplies a
// real registry, and in tests that only care about chunk-loadedness.
type allAirBlockQuery struct{}

func (allAirBlockQuery) IsSolid(int32) bool      { return false }
func (allAirBlockQuery) IsPassable(int32) bool    { return true }
func (allAirBlockQuery) IsHazardous(int32) bool   { return false }

// DefaultBlockQuery returns the permissive all-air BlockQuery used until the
// embedder calls Instance.SetBlockQuery with a real registry.
func DefaultBlockQuery() BlockQuery { return allAirBlockQuery{} }
