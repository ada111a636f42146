// Package world implements the tick-driven entity/component model: a
// chunked voxel Instance, a typed entity-component store, a Fixed/Update
// tick scheduler, and the packet-handler systems that mutate the store from
// decoded play-phase packets.
//
// Grounded on azalea-client's ECS world (client.rs, disconnect.rs) reworked
// around Go's generics instead of bevy_ecs, since no ECS framework exists in
// the retrieved example pack.
package world

import (
	"sync"

	"go.uber.org/zap"
)

// World is the single mutable store shared by one connection, or by several
// connections joined to the same dimension under a shared-world/per-client-
// views arrangement. All mutation happens while mu is held by the schedule
// runner; reads from outside the schedule must also take mu.
type World struct {
	mu sync.Mutex

	nextEntity EntityID
	localPlayer EntityID

	Positions   *ComponentStore[Position]
	Rotations   *ComponentStore[Rotation]
	Velocities  *ComponentStore[Velocity]
	EyeHeights  *ComponentStore[EyeHeight]
	Healths     *ComponentStore[Health]
	Hungers     *ComponentStore[Hunger]
	Profiles    *ComponentStore[GameProfile]
	Physics     *ComponentStore[PhysicsState]
	Inventories *ComponentStore[Inventory]
	Alive       *ComponentStore[ConnectionAlive]
	Partials    *ComponentStore[*PartialInstance]
	Pathfinding *ComponentStore[*PathfinderState]
	Movement    *ComponentStore[MovementIntent]

	// TabList is keyed by UUID rather than EntityID: entries can exist for
	// players who have never had an entity spawned in render distance.
	TabList map[[16]byte]*TabListEntry

	Instance *Instance

	// wireEntities maps the server-assigned entity id (int32, scoped to one
	// connection) to the local EntityID, so RemoveEntities/EntityPositionSync
	// packets can find the entity they refer to.
	wireEntities map[int32]EntityID

	Inbound  *PacketQueue
	Outbound *PacketQueue

	// Logger receives warnings from handler systems that skip a malformed or
	// unrecognized-but-harmless packet; handlers log and skip, they never
	// panic on network input.
	Logger *zap.Logger
}

// NewWorld creates an empty world backed by a fresh Instance.
func NewWorld() *World {
	return &World{
		Positions:   NewComponentStore[Position](),
		Rotations:   NewComponentStore[Rotation](),
		Velocities:  NewComponentStore[Velocity](),
		EyeHeights:  NewComponentStore[EyeHeight](),
		Healths:     NewComponentStore[Health](),
		Hungers:     NewComponentStore[Hunger](),
		Profiles:    NewComponentStore[GameProfile](),
		Physics:     NewComponentStore[PhysicsState](),
		Inventories: NewComponentStore[Inventory](),
		Alive:       NewComponentStore[ConnectionAlive](),
		Partials:    NewComponentStore[*PartialInstance](),
		Pathfinding: NewComponentStore[*PathfinderState](),
		Movement:    NewComponentStore[MovementIntent](),
		TabList:      make(map[[16]byte]*TabListEntry),
		Instance:     NewInstance(),
		wireEntities: make(map[int32]EntityID),
		Inbound:      NewPacketQueue(),
		Outbound:     NewPacketQueue(),
		Logger:       zap.NewNop(),
	}
}

// SetLogger installs a structured logger for handler-system diagnostics.
func (w *World) SetLogger(l *zap.Logger) { w.Logger = l }

// RegisterWireEntity associates a server-assigned entity id with a local
// EntityID, so later packets addressing the wire id (RemoveEntities,
// EntityPositionSync) resolve to the right entity.
func (w *World) RegisterWireEntity(wireID int32, id EntityID) {
	w.wireEntities[wireID] = id
}

// WireEntity looks up the local EntityID for a server-assigned entity id.
func (w *World) WireEntity(wireID int32) (EntityID, bool) {
	id, ok := w.wireEntities[wireID]
	return id, ok
}

// ForgetWireEntity drops the wire-id mapping, called when an entity is
// removed so the id can't resolve to a despawned entity.
func (w *World) ForgetWireEntity(wireID int32) {
	delete(w.wireEntities, wireID)
}

// Lock acquires the world mutex. Exported so the schedule runner (the only
// intended caller outside this package) can hold it across a full schedule
// pass; handler systems called from within a pass must not call Lock again.
func (w *World) Lock() { w.mu.Lock() }

// Unlock releases the world mutex.
func (w *World) Unlock() { w.mu.Unlock() }

// Spawn allocates a fresh entity id with no components attached.
func (w *World) Spawn() EntityID {
	w.nextEntity++
	return w.nextEntity
}

// Despawn removes every known component for id.
func (w *World) Despawn(id EntityID) {
	w.Positions.Remove(id)
	w.Rotations.Remove(id)
	w.Velocities.Remove(id)
	w.EyeHeights.Remove(id)
	w.Healths.Remove(id)
	w.Hungers.Remove(id)
	w.Profiles.Remove(id)
	w.Physics.Remove(id)
	w.Inventories.Remove(id)
	w.Alive.Remove(id)
	w.Partials.Remove(id)
	w.Pathfinding.Remove(id)
	w.Movement.Remove(id)
}

// LocalPlayer returns the entity id of the client's own player, reused
// across reconnects by UUID.
func (w *World) LocalPlayer() EntityID { return w.localPlayer }

// SetLocalPlayer binds the local player entity. The client looks the entity
// up with EntityByUUID first, so a reconnect reuses the same entity.
func (w *World) SetLocalPlayer(id EntityID) { w.localPlayer = id }

// EntityByUUID finds an existing player entity by profile UUID, used to
// reuse the local player's entity across reconnects and to resolve
// PlayerInfoUpdate/Remove packets against already-spawned entities.
func (w *World) EntityByUUID(uuid [16]byte) (EntityID, bool) {
	var found EntityID
	ok := false
	w.Profiles.Each(func(id EntityID, p GameProfile) {
		if p.UUID == uuid {
			found, ok = id, true
		}
	})
	return found, ok
}

// Query2 returns the ids of every entity present in both stores; callers
// fetch the components with Get. Used by systems that need a component combination (e.g. the
// physics system over Position+Velocity).
func Query2[A, B any](sa *ComponentStore[A], sb *ComponentStore[B]) []EntityID {
	var ids []EntityID
	if sa.Len() <= sb.Len() {
		sa.Each(func(id EntityID, _ A) {
			if sb.Has(id) {
				ids = append(ids, id)
			}
		})
	} else {
		sb.Each(func(id EntityID, _ B) {
			if sa.Has(id) {
				ids = append(ids, id)
			}
		})
	}
	return ids
}
