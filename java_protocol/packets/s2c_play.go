package packets

import (
	"fmt"

	jp "github.com/go-mclib/bot/java_protocol"
	ns "github.com/go-mclib/bot/net_structures"
)

// S2CKeepAlivePlayPacket represents "Clientbound Keep Alive (play)"
//
// > The server will frequently send out a keep-alive, each containing a random ID.
// The client must respond with the same payload.
// If the client does not respond to a Keep Alive packet within 15 seconds after it was sent,
// the server kicks the client. Vice versa, if the server does not send any keep-alives for 20 seconds,
// the client will disconnect and yields a "Timed out" exception.
//
// > The vanilla server uses a system-dependent time in milliseconds to generate the keep alive ID value.
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Clientbound_Keep_Alive_(play)
var S2CKeepAlivePlayPacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x26)

type S2CKeepAlivePlayPacketData struct {
	KeepAliveID ns.Long
}

// S2CSystemChatMessagePacket represents "System Chat Message"
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#System_Chat_Message
var S2CSystemChatMessagePacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x62)

type S2CSystemChatMessagePacketData struct {
	Content ns.JSONTextComponent
	Overlay ns.Boolean
}

// S2CPingPlayPacket represents "Ping (play)"
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Ping_(play)
var S2CPingPlayPacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x33)

type S2CPingPlayPacketData struct {
	ID ns.Int
}

// S2CDisconnectPlayPacket represents "Disconnect (play)".
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Disconnect_(play)
var S2CDisconnectPlayPacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x1D)

type S2CDisconnectPlayPacketData struct {
	Reason ns.JSONTextComponent
}

// S2CAddEntityPacket represents "Spawn Entity".
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Spawn_Entity
var S2CAddEntityPacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x01)

type S2CAddEntityPacketData struct {
	EntityID   ns.VarInt
	EntityUUID ns.UUID
	Type       ns.VarInt
	X          ns.Double
	Y          ns.Double
	Z          ns.Double
	Pitch      ns.Angle
	Yaw        ns.Angle
	HeadYaw    ns.Angle
	Data       ns.VarInt
	VelocityX  ns.Short
	VelocityY  ns.Short
	VelocityZ  ns.Short
}

// S2CRemoveEntitiesPacket represents "Remove Entities".
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Remove_Entities
var S2CRemoveEntitiesPacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x47)

type S2CRemoveEntitiesPacketData struct {
	EntityIDs ns.PrefixedArray[ns.VarInt]
}

// S2CEntityPositionSyncPacket represents "Entity Position Sync": an absolute,
// non-deltaed position+velocity+rotation update for a remote entity.
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Entity_Position_Sync
var S2CEntityPositionSyncPacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x40)

type S2CEntityPositionSyncPacketData struct {
	EntityID    ns.VarInt
	X           ns.Double
	Y           ns.Double
	Z           ns.Double
	VelocityX   ns.Double
	VelocityY   ns.Double
	VelocityZ   ns.Double
	Yaw         ns.Float
	Pitch       ns.Float
	OnGround    ns.Boolean
}

// ProfileProperty is a single signed property of a game profile (e.g. "textures").
type ProfileProperty struct {
	Name      ns.String
	Value     ns.String
	Signature ns.PrefixedOptional[ns.String]
}

func (p ProfileProperty) ToBytes() (ns.ByteArray, error) {
	result, err := p.Name.ToBytes()
	if err != nil {
		return nil, err
	}
	valueBytes, err := p.Value.ToBytes()
	if err != nil {
		return nil, err
	}
	result = append(result, valueBytes...)
	sigBytes, err := p.Signature.ToBytes()
	if err != nil {
		return nil, err
	}
	return append(result, sigBytes...), nil
}

func (p *ProfileProperty) FromBytes(data ns.ByteArray) (int, error) {
	offset, err := p.Name.FromBytes(data)
	if err != nil {
		return 0, err
	}
	n, err := p.Value.FromBytes(data[offset:])
	if err != nil {
		return 0, err
	}
	offset += n
	n, err = p.Signature.FromBytes(data[offset:])
	if err != nil {
		return 0, err
	}
	offset += n
	return offset, nil
}

// PlayerInfoEntry represents one player added by S2CPlayerInfoUpdatePacket.
//
// The real "Player Info Update" packet carries a bitmask of actions (add
// player, update gamemode, update listed, update latency, update display
// name...) each contributing a differently-shaped sub-record per entry; only
// the "add player" shape is modeled here; narrower updates are ignored by the
// handler rather than decoded.
type PlayerInfoEntry struct {
	UUID        ns.UUID
	Name        ns.String
	Properties  ns.PrefixedArray[ProfileProperty]
	GameMode    ns.VarInt
	Listed      ns.Boolean
	Ping        ns.VarInt
	DisplayName ns.PrefixedOptional[ns.JSONTextComponent]
}

func (e PlayerInfoEntry) ToBytes() (ns.ByteArray, error) {
	result, err := e.UUID.ToBytes()
	if err != nil {
		return nil, err
	}
	nameBytes, err := e.Name.ToBytes()
	if err != nil {
		return nil, err
	}
	result = append(result, nameBytes...)

	propsLen, err := ns.VarInt(len(e.Properties)).ToBytes()
	if err != nil {
		return nil, err
	}
	result = append(result, propsLen...)
	for _, prop := range e.Properties {
		propBytes, err := prop.ToBytes()
		if err != nil {
			return nil, err
		}
		result = append(result, propBytes...)
	}

	gameModeBytes, err := e.GameMode.ToBytes()
	if err != nil {
		return nil, err
	}
	result = append(result, gameModeBytes...)

	listedBytes, err := e.Listed.ToBytes()
	if err != nil {
		return nil, err
	}
	result = append(result, listedBytes...)

	pingBytes, err := e.Ping.ToBytes()
	if err != nil {
		return nil, err
	}
	result = append(result, pingBytes...)

	displayNameBytes, err := e.DisplayName.ToBytes()
	if err != nil {
		return nil, err
	}
	return append(result, displayNameBytes...), nil
}

func (e *PlayerInfoEntry) FromBytes(data ns.ByteArray) (int, error) {
	offset, err := e.UUID.FromBytes(data)
	if err != nil {
		return 0, err
	}
	n, err := e.Name.FromBytes(data[offset:])
	if err != nil {
		return 0, err
	}
	offset += n

	var propsLen ns.VarInt
	n, err = propsLen.FromBytes(data[offset:])
	if err != nil {
		return 0, err
	}
	offset += n
	if propsLen < 0 {
		return 0, fmt.Errorf("negative property array length")
	}
	e.Properties = make(ns.PrefixedArray[ProfileProperty], propsLen)
	for i := range int(propsLen) {
		n, err = e.Properties[i].FromBytes(data[offset:])
		if err != nil {
			return 0, err
		}
		offset += n
	}

	n, err = e.GameMode.FromBytes(data[offset:])
	if err != nil {
		return 0, err
	}
	offset += n

	n, err = e.Listed.FromBytes(data[offset:])
	if err != nil {
		return 0, err
	}
	offset += n

	n, err = e.Ping.FromBytes(data[offset:])
	if err != nil {
		return 0, err
	}
	offset += n

	n, err = e.DisplayName.FromBytes(data[offset:])
	if err != nil {
		return 0, err
	}
	offset += n

	return offset, nil
}

// S2CPlayerInfoUpdatePacket represents "Player Info Update" restricted to the
// add-player entry shape; the play handler ignores packets whose Actions
// byte lacks the add-player bit (0x01).
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Player_Info_Update
var S2CPlayerInfoUpdatePacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x3E)

type S2CPlayerInfoUpdatePacketData struct {
	Actions ns.UnsignedByte
	Entries ns.PrefixedArray[PlayerInfoEntry]
}

// S2CPlayerInfoRemovePacket represents "Player Info Remove".
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Player_Info_Remove
var S2CPlayerInfoRemovePacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x3D)

type S2CPlayerInfoRemovePacketData struct {
	UUIDs ns.PrefixedArray[ns.UUID]
}

// S2CSetHealthPacket represents "Set Health".
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Set_Health
var S2CSetHealthPacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x61)

type S2CSetHealthPacketData struct {
	Health     ns.Float
	Food       ns.VarInt
	Saturation ns.Float
}

// S2CPlayerPositionPacket represents "Synchronize Player Position" (teleport).
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Synchronize_Player_Position
var S2CPlayerPositionPacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x41)

type S2CPlayerPositionPacketData struct {
	TeleportID ns.VarInt
	X          ns.Double
	Y          ns.Double
	Z          ns.Double
	VelocityX  ns.Double
	VelocityY  ns.Double
	VelocityZ  ns.Double
	Yaw        ns.Float
	Pitch      ns.Float
	Flags      ns.Int
}

// S2CLevelChunkWithLightPacket represents "Chunk Data and Update Light".
// The chunk section payload and light payload are kept as opaque,
// separately-decoded blobs (see the world package's section decoder);
// heightmaps and block entities use the already-vendored ChunkData type.
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Chunk_Data_and_Update_Light
var S2CLevelChunkWithLightPacket = jp.NewPacket(jp.StatePlay, jp.S2C, 0x27)

type S2CLevelChunkWithLightPacketData struct {
	ChunkX ns.Int
	ChunkZ ns.Int
	Chunk  ns.ChunkData
	Light  ns.LightData
}
