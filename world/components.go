package world

import "time"

// Position is the entity's position in world space, as reported by the
// server (or predicted locally for the player between position syncs).
type Position struct {
	X, Y, Z float64
}

// BlockPos truncates a Position to the block it occupies.
func (p Position) BlockPos() BlockPos {
	return BlockPos{X: floorInt(p.X), Y: floorInt(p.Y), Z: floorInt(p.Z)}
}

func floorInt(v float64) int32 {
	i := int32(v)
	if v < float64(i) {
		i--
	}
	return i
}

// Velocity is the entity's per-tick delta position, used by the pathfinder's
// lateral-motion checks during the Ascend move.
type Velocity struct {
	X, Y, Z float64
}

// Rotation is the entity's look direction, in degrees.
type Rotation struct {
	Yaw, Pitch float32
}

// EyeHeight offsets Position to the entity's eye level. The pathfinder's
// LookAt aims from Position itself and does not read it.
type EyeHeight struct {
	Value float64
}

// Health tracks the entity's health point value (0 means dead).
type Health struct {
	Value float32
}

// Hunger tracks the local player's food and saturation, as reported by
// SetHealth. SetHealth carries no exhaustion, so its handler leaves
// Exhaustion at zero.
type Hunger struct {
	Food        int32
	Saturation  float32
	Exhaustion  float32
}

// GameProfile identifies a player entity by UUID and username, plus any
// signed profile properties (skins/capes) forwarded verbatim.
type GameProfile struct {
	UUID       [16]byte
	Name       string
	Properties []ProfileProperty
}

// ProfileProperty mirrors the wire ProfileProperty without depending on the
// packets package (which would create an import cycle with java_protocol).
type ProfileProperty struct {
	Name, Value, Signature string
	HasSignature           bool
}

// TabListEntry is the per-player record tracked by the TabList: UUID maps to
// name, display name, ping and game mode.
type TabListEntry struct {
	UUID        [16]byte
	Name        string
	DisplayName string
	Ping        int32
	GameMode    int32
	Listed      bool
}

// PhysicsState holds the per-tick physics inputs the pathfinder's execute
// closures read (azalea's ExecuteCtx.physics.delta).
type PhysicsState struct {
	Delta    Velocity
	OnGround bool
}

// PathfinderState is the per-entity pathfinding cursor: the active goal,
// planned path, current index into it, and stuck-detection bookkeeping.
type PathfinderState struct {
	Goal         Goal
	Origin       BlockPos // the BlockPos the search started from
	Path         []Edge
	Index        int
	LastNodeTime time.Time
	LastNode     int
}

// Inventory is a minimal stand-in for the 46-slot player inventory; slot
// contents are opaque (item registries are out of scope): each slot records
// only presence, a raw item id and a count, so higher-level code can reason
// about "do I have space" without decoding item NBT.
type Inventory struct {
	Slots        [46]InventorySlot
	SelectedHotbar int32
}

// InventorySlot is an opaque slot: present/absent plus a raw item id and
// count, since full item registries are out of scope.
type InventorySlot struct {
	Present bool
	ItemID  int32
	Count   int32
}

// MovementIntent is the client-side control state the pathfinder executor
// (and, eventually, manual movement commands) writes each tick;
// MovementOutputSystem reads it to build the outgoing PlayerInput and
// position/rotation packets. Kept as a plain component rather than a
// direct packet write so the pathfinder has no dependency on java_protocol.
type MovementIntent struct {
	Forward   bool
	Sprinting bool
	JumpQueued bool
}

// ConnectionAlive mirrors azalea's IsConnectionAlive marker: flipped false by
// the write loop on I/O failure, observed by the disconnect system.
type ConnectionAlive struct {
	Alive bool
}

// PartialInstance records which chunk columns a particular client has
// actually been sent, for a shared-world arrangement with per-client views.
type PartialInstance struct {
	Chunks map[ChunkPos]bool
}

func NewPartialInstance() *PartialInstance {
	return &PartialInstance{Chunks: make(map[ChunkPos]bool)}
}
