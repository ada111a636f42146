package packets

import (
	jp "github.com/go-mclib/bot/java_protocol"
	ns "github.com/go-mclib/bot/net_structures"
)

// C2SKeepAlivePlayPacket represents "Serverbound Keep Alive (play)"
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Serverbound_Keep_Alive_(play)
var C2SKeepAlivePlayPacket = jp.NewPacket(jp.StatePlay, jp.C2S, 0x1B)

type C2SKeepAlivePlayPacketData struct {
	KeepAliveID ns.Long
}

// C2SPingResponsePlayPacket represents "Ping Response (play)"
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Ping_Response_(play)
var C2SPingResponsePlayPacket = jp.NewPacket(jp.StatePlay, jp.C2S, 0x18)

type C2SPingResponsePlayPacketData struct {
	ID ns.Int
}

// C2SChatMessagePacket represents "Chat Message" (unsigned)
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Chat_Message
//
// Note: the packet carries the raw message only; no message signing is done anywhere in this library.
var C2SChatMessagePacket = jp.NewPacket(jp.StatePlay, jp.C2S, 0x03)

type C2SChatMessagePacketData struct {
	Message ns.String
}

// C2STeleportConfirmPacket represents "Teleport Confirm" (serverbound/play)
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Teleport_Confirm
var C2STeleportConfirmPacket = jp.NewPacket(jp.StatePlay, jp.C2S, 0x00)

type C2STeleportConfirmPacketData struct {
	TeleportID ns.VarInt
}

// C2SSetPlayerPositionPacket represents "Set Player Position".
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Set_Player_Position
var C2SSetPlayerPositionPacket = jp.NewPacket(jp.StatePlay, jp.C2S, 0x1D)

type C2SSetPlayerPositionPacketData struct {
	X        ns.Double
	Y        ns.Double
	Z        ns.Double
	OnGround ns.Boolean
}

// C2SSetPlayerPositionAndRotationPacket represents "Set Player Position and Rotation".
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Set_Player_Position_and_Rotation
var C2SSetPlayerPositionAndRotationPacket = jp.NewPacket(jp.StatePlay, jp.C2S, 0x1E)

type C2SSetPlayerPositionAndRotationPacketData struct {
	X        ns.Double
	Y        ns.Double
	Z        ns.Double
	Yaw      ns.Float
	Pitch    ns.Float
	OnGround ns.Boolean
}

// C2SSetPlayerRotationPacket represents "Set Player Rotation".
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Set_Player_Rotation
var C2SSetPlayerRotationPacket = jp.NewPacket(jp.StatePlay, jp.C2S, 0x1F)

type C2SSetPlayerRotationPacketData struct {
	Yaw      ns.Float
	Pitch    ns.Float
	OnGround ns.Boolean
}

// C2SPlayerCommandPacket represents "Player Command" (e.g. start/stop sprinting).
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Player_Command
var C2SPlayerCommandPacket = jp.NewPacket(jp.StatePlay, jp.C2S, 0x25)

const (
	PlayerCommandActionStartSprinting = ns.VarInt(iota + 3)
	PlayerCommandActionStopSprinting
)

type C2SPlayerCommandPacketData struct {
	EntityID ns.VarInt
	ActionID ns.VarInt
	JumpBoost ns.VarInt
}

// C2SPlayerInputPacket represents "Player Input" (movement/jump flags sent
// alongside position packets on recent protocol versions).
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Player_Input
var C2SPlayerInputPacket = jp.NewPacket(jp.StatePlay, jp.C2S, 0x2C)

type C2SPlayerInputPacketData struct {
	// Bit mask: 0x01 forward, 0x02 backward, 0x04 left, 0x08 right, 0x10 jump, 0x20 sneak, 0x40 sprint.
	Flags ns.UnsignedByte
}
