package world

import (
	jp "github.com/go-mclib/bot/java_protocol"
	pk "github.com/go-mclib/bot/java_protocol/packets"
	ns "github.com/go-mclib/bot/net_structures"
	"go.uber.org/zap"
)

// PacketDispatchSystem is the Update-schedule system that drains the inbound
// queue populated by the read loop and mutates the world accordingly. This
// is the one place packet bytes turn into component writes; packet receipt
// never mutates the world directly, it only enqueues packets that this
// system then drains.
func PacketDispatchSystem(w *World, bus *EventBus) {
	for _, p := range w.Inbound.Drain() {
		dispatchOne(w, bus, p)
	}
}

func dispatchOne(w *World, bus *EventBus, p *jp.Packet) {
	if p.State != jp.StatePlay {
		return
	}

	switch p.PacketID {
	case pk.S2CKeepAlivePlayPacket.PacketID:
		handleKeepAlive(w, p)
	case pk.S2CSystemChatMessagePacket.PacketID:
		handleChat(w, bus, p)
	case pk.S2CDisconnectPlayPacket.PacketID:
		handleDisconnect(w, bus, p)
	case pk.S2CAddEntityPacket.PacketID:
		handleAddEntity(w, p)
	case pk.S2CRemoveEntitiesPacket.PacketID:
		handleRemoveEntities(w, bus, p)
	case pk.S2CEntityPositionSyncPacket.PacketID:
		handlePositionSync(w, p)
	case pk.S2CPlayerPositionPacket.PacketID:
		handlePlayerPositionSync(w, p)
	case pk.S2CPlayerInfoUpdatePacket.PacketID:
		handlePlayerInfoUpdate(w, bus, p)
	case pk.S2CPlayerInfoRemovePacket.PacketID:
		handlePlayerInfoRemove(w, bus, p)
	case pk.S2CSetHealthPacket.PacketID:
		handleSetHealth(w, bus, p)
	case pk.S2CLevelChunkWithLightPacket.PacketID:
		handleChunkLoad(w, p)
	default:
		// Every other play packet is outside the catalog this library
		// implements; ignoring an unrecognized id is the documented
		// behavior for malformed-but-recoverable input.
	}
}

func handleKeepAlive(w *World, p *jp.Packet) {
	var data pk.S2CKeepAlivePlayPacketData
	if err := p.UnmarshalData(&data); err != nil {
		w.Logger.Warn("malformed keep-alive packet, skipping", zap.Error(err))
		return
	}
	reply, err := pk.C2SKeepAlivePlayPacket.WithData(pk.C2SKeepAlivePlayPacketData{KeepAliveID: data.KeepAliveID})
	if err != nil {
		w.Logger.Warn("failed to encode keep-alive reply", zap.Error(err))
		return
	}
	w.Outbound.Push(reply)
}

func handleChat(w *World, bus *EventBus, p *jp.Packet) {
	var data pk.S2CSystemChatMessagePacketData
	if err := p.UnmarshalData(&data); err != nil {
		w.Logger.Warn("malformed system chat packet, skipping", zap.Error(err))
		return
	}
	bus.Emit(Event{Kind: EventChat, Payload: ChatPayload{
		Sender:  w.LocalPlayer(),
		Message: renderTextComponent(data.Content),
	}})
}

// renderTextComponent extracts the flattened "text"-ish content of a JSON
// text component without interpreting extra/click/hover semantics: full
// chat-component rendering is out of scope.
func renderTextComponent(c map[string]any) string {
	if s, ok := c["text"].(string); ok {
		return s
	}
	return ""
}

func handleDisconnect(w *World, bus *EventBus, p *jp.Packet) {
	var data pk.S2CDisconnectPlayPacketData
	reason := ""
	if err := p.UnmarshalData(&data); err == nil {
		reason = renderTextComponent(data.Reason)
	}
	if a, ok := w.Alive.Get(w.LocalPlayer()); ok {
		a.Alive = false
		w.Alive.Set(w.LocalPlayer(), a)
	} else {
		w.Alive.Set(w.LocalPlayer(), ConnectionAlive{Alive: false})
	}
	bus.Emit(Event{Kind: EventDisconnect, Payload: DisconnectPayload{Reason: reason}})
}

func handleAddEntity(w *World, p *jp.Packet) {
	var data pk.S2CAddEntityPacketData
	if err := p.UnmarshalData(&data); err != nil {
		w.Logger.Warn("malformed add-entity packet, skipping", zap.Error(err))
		return
	}
	id := w.Spawn()
	w.RegisterWireEntity(int32(data.EntityID), id)
	w.Positions.Set(id, Position{X: float64(data.X), Y: float64(data.Y), Z: float64(data.Z)})
	w.Rotations.Set(id, Rotation{Yaw: float32(data.Yaw.ToYaw()), Pitch: float32(data.Pitch.ToYaw())})
	w.Velocities.Set(id, Velocity{
		X: float64(data.VelocityX) / 8000,
		Y: float64(data.VelocityY) / 8000,
		Z: float64(data.VelocityZ) / 8000,
	})
}

func handleRemoveEntities(w *World, bus *EventBus, p *jp.Packet) {
	var data pk.S2CRemoveEntitiesPacketData
	if err := p.UnmarshalData(&data); err != nil {
		w.Logger.Warn("malformed remove-entities packet, skipping", zap.Error(err))
		return
	}
	for _, wireID := range data.EntityIDs {
		id, ok := w.WireEntity(int32(wireID))
		if !ok {
			continue
		}
		w.ForgetWireEntity(int32(wireID))
		if id == w.LocalPlayer() {
			continue
		}
		w.Despawn(id)
	}
}

func handlePositionSync(w *World, p *jp.Packet) {
	var data pk.S2CEntityPositionSyncPacketData
	if err := p.UnmarshalData(&data); err != nil {
		w.Logger.Warn("malformed entity-position-sync packet, skipping", zap.Error(err))
		return
	}
	id, ok := w.WireEntity(int32(data.EntityID))
	if !ok {
		return
	}
	w.Positions.Set(id, Position{X: float64(data.X), Y: float64(data.Y), Z: float64(data.Z)})
	w.Velocities.Set(id, Velocity{X: float64(data.VelocityX), Y: float64(data.VelocityY), Z: float64(data.VelocityZ)})
	w.Rotations.Set(id, Rotation{Yaw: float32(data.Yaw), Pitch: float32(data.Pitch)})
}

func handlePlayerInfoUpdate(w *World, bus *EventBus, p *jp.Packet) {
	var data pk.S2CPlayerInfoUpdatePacketData
	if err := p.UnmarshalData(&data); err != nil {
		w.Logger.Warn("malformed player-info-update packet, skipping", zap.Error(err))
		return
	}
	if data.Actions&0x01 == 0 {
		// Only the add-player entry shape is modeled; narrower updates are ignored.
		return
	}
	for _, entry := range data.Entries {
		uuid := [16]byte(entry.UUID)

		_, existed := w.TabList[uuid]
		w.TabList[uuid] = &TabListEntry{
			UUID:        uuid,
			Name:        string(entry.Name),
			DisplayName: string(entry.Name),
			Ping:        int32(entry.Ping),
			GameMode:    int32(entry.GameMode),
			Listed:      bool(entry.Listed),
		}

		id, ok := w.EntityByUUID(uuid)
		if !ok {
			id = w.Spawn()
		}
		props := make([]ProfileProperty, len(entry.Properties))
		for i, prop := range entry.Properties {
			props[i] = ProfileProperty{
				Name:         string(prop.Name),
				Value:        string(prop.Value),
				Signature:    string(prop.Signature.Value),
				HasSignature: bool(prop.Signature.Present),
			}
		}
		w.Profiles.Set(id, GameProfile{UUID: uuid, Name: string(entry.Name), Properties: props})

		if existed {
			bus.Emit(Event{Kind: EventUpdatePlayer, Payload: UpdatePlayerPayload{Entity: id, UUID: uuid}})
		} else {
			bus.Emit(Event{Kind: EventAddPlayer, Payload: AddPlayerPayload{Entity: id, UUID: uuid}})
		}
	}
}

func handlePlayerInfoRemove(w *World, bus *EventBus, p *jp.Packet) {
	var data pk.S2CPlayerInfoRemovePacketData
	if err := p.UnmarshalData(&data); err != nil {
		w.Logger.Warn("malformed player-info-remove packet, skipping", zap.Error(err))
		return
	}
	for _, wireUUID := range data.UUIDs {
		uuid := [16]byte(wireUUID)
		delete(w.TabList, uuid)
		if id, ok := w.EntityByUUID(uuid); ok && id != w.LocalPlayer() {
			w.Despawn(id)
		}
		bus.Emit(Event{Kind: EventRemovePlayer, Payload: RemovePlayerPayload{UUID: uuid}})
	}
}

func handleSetHealth(w *World, bus *EventBus, p *jp.Packet) {
	var data pk.S2CSetHealthPacketData
	if err := p.UnmarshalData(&data); err != nil {
		w.Logger.Warn("malformed set-health packet, skipping", zap.Error(err))
		return
	}
	local := w.LocalPlayer()
	wasAlive, existed := w.Healths.Get(local)
	w.Healths.Set(local, Health{Value: float32(data.Health)})
	w.Hungers.Set(local, Hunger{Food: int32(data.Food), Saturation: float32(data.Saturation)})

	if data.Health <= 0 && (!existed || wasAlive.Value > 0) {
		bus.Emit(Event{Kind: EventDeath, Payload: DeathPayload{Entity: local}})
	}
}

func handleChunkLoad(w *World, p *jp.Packet) {
	var data pk.S2CLevelChunkWithLightPacketData
	if err := p.UnmarshalData(&data); err != nil {
		w.Logger.Warn("malformed chunk packet, skipping", zap.Error(err))
		return
	}
	col, err := DecodeColumn(data.Chunk.Data)
	if err != nil {
		w.Logger.Warn("failed to decode chunk sections, skipping", zap.Error(err))
		return
	}
	w.Instance.LoadColumn(ChunkPos{X: int32(data.ChunkX), Z: int32(data.ChunkZ)}, col)
}

// MovementOutputSystem is the Fixed-schedule system that turns the local
// player's MovementIntent (written by the pathfinder executor, or by manual
// movement calls) into the player-input and position/rotation packets a
// vanilla server expects every tick a player is moving. It runs after the
// pathfinder executor in the fixed systems list so it always sees this
// tick's freshly written intent.
func MovementOutputSystem(w *World, bus *EventBus) {
	local := w.LocalPlayer()
	intent, ok := w.Movement.Get(local)
	if !ok {
		return
	}
	pos, ok := w.Positions.Get(local)
	if !ok {
		return
	}
	rot, _ := w.Rotations.Get(local)
	physics, _ := w.Physics.Get(local)

	var flags ns.UnsignedByte
	if intent.Forward {
		flags |= 0x01
	}
	if intent.JumpQueued {
		flags |= 0x10
	}
	if intent.Sprinting {
		flags |= 0x40
	}

	input, err := pk.C2SPlayerInputPacket.WithData(pk.C2SPlayerInputPacketData{Flags: flags})
	if err != nil {
		w.Logger.Warn("failed to encode player-input packet", zap.Error(err))
		return
	}
	move, err := pk.C2SSetPlayerPositionAndRotationPacket.WithData(pk.C2SSetPlayerPositionAndRotationPacketData{
		X: ns.Double(pos.X), Y: ns.Double(pos.Y), Z: ns.Double(pos.Z),
		Yaw: ns.Float(rot.Yaw), Pitch: ns.Float(rot.Pitch), OnGround: ns.Boolean(physics.OnGround),
	})
	if err != nil {
		w.Logger.Warn("failed to encode set-player-position-and-rotation packet", zap.Error(err))
		return
	}
	w.Outbound.Push(input)
	w.Outbound.Push(move)

	// JumpQueued is a one-shot request consumed by this tick's packet; clear
	// it so the next tick doesn't keep resending a jump that already landed.
	intent.JumpQueued = false
	w.Movement.Set(local, intent)
}

func handlePlayerPositionSync(w *World, p *jp.Packet) {
	var data pk.S2CPlayerPositionPacketData
	if err := p.UnmarshalData(&data); err != nil {
		w.Logger.Warn("malformed player-position-sync packet, skipping", zap.Error(err))
		return
	}
	local := w.LocalPlayer()
	w.Positions.Set(local, Position{X: float64(data.X), Y: float64(data.Y), Z: float64(data.Z)})
	w.Rotations.Set(local, Rotation{Yaw: float32(data.Yaw), Pitch: float32(data.Pitch)})

	reply, err := pk.C2STeleportConfirmPacket.WithData(pk.C2STeleportConfirmPacketData{TeleportID: data.TeleportID})
	if err != nil {
		w.Logger.Warn("failed to encode teleport-confirm packet", zap.Error(err))
		return
	}
	w.Outbound.Push(reply)
}

// DisconnectSystem observes ConnectionAlive and converges the world on a
// clean teardown: once the local player's
// connection is marked dead, drop any in-flight path so the executor stops
// issuing movement for an entity nothing is driving anymore. The Disconnect
// event itself was already emitted by whichever path flipped the flag (a
// server Disconnect packet or a write-loop I/O failure).
func DisconnectSystem(w *World, bus *EventBus) {
	local := w.LocalPlayer()
	alive, ok := w.Alive.Get(local)
	if !ok || alive.Alive {
		return
	}
	w.Pathfinding.Remove(local)
}
