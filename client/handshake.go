package client

import (
	"context"
	"net"
	"strconv"

	jp "github.com/go-mclib/bot/java_protocol"
	"github.com/go-mclib/bot/java_protocol/packets"
	ns "github.com/go-mclib/bot/net_structures"
)

// ProtocolVersion is the protocol number this library's packet catalog was
// written against (1.21.4). The server is expected to match it; no version
// negotiation or multi-version packet tables exist.
const ProtocolVersion ns.VarInt = 769

// defaultServerPort is used for the Intention packet's ServerPort field when
// address carries no explicit port, matching vanilla's own default.
const defaultServerPort = 25565

// handshake drives the connection from freshly-dialed to Play: Handshake,
// Login (with optional encryption/session-server auth and compression), then
// Configuration. It returns once the server has switched the connection to
// Play.
func (c *Client) handshake(ctx context.Context) error {
	host, port := splitHostPort(c.address)

	intention, err := packets.C2SIntentionPacket.WithData(packets.C2SIntentionPacketData{
		ProtocolVersion: ProtocolVersion,
		ServerAddress:   ns.String(host),
		ServerPort:      ns.UnsignedShort(port),
		Intent:          packets.IntentLogin,
	})
	if err != nil {
		return joinErr(ErrConnection, "encode intention packet: %w", err)
	}
	if err := c.conn.WritePacket(intention); err != nil {
		return joinErr(ErrConnection, "send intention packet: %w", err)
	}

	c.conn.SetState(jp.StateLogin)
	hello, err := packets.C2SHelloPacket.WithData(packets.C2SHelloPacketData{
		Name:       ns.String(c.account.Username),
		PlayerUUID: ns.UUID(c.account.UUID),
	})
	if err != nil {
		return joinErr(ErrConnection, "encode hello packet: %w", err)
	}
	if err := c.conn.WritePacket(hello); err != nil {
		return joinErr(ErrConnection, "send hello packet: %w", err)
	}

	if err := c.loginPhase(ctx); err != nil {
		return err
	}
	return c.configurationPhase(ctx)
}

func splitHostPort(address string) (string, int) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return address, defaultServerPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, defaultServerPort
	}
	return host, port
}

// loginPhase reads login-state packets until LoginSuccess (or Disconnect),
// handling EncryptionRequest and SetCompression along the way.
func (c *Client) loginPhase(ctx context.Context) error {
	sessionAttempts := 0

	for {
		p, err := c.conn.ReadPacket()
		if err != nil {
			return joinErr(ErrReadPacket, "read login packet: %w", err)
		}

		switch p.PacketID {
		case packets.S2CDisconnectLoginPacket.PacketID:
			var data packets.S2CDisconnectLoginPacketData
			if err := p.UnmarshalData(&data); err != nil {
				return joinErr(ErrDisconnect, "decode login disconnect: %w", err)
			}
			return joinErr(ErrDisconnect, "disconnected during login: %s", data.Reason)

		case packets.S2CEncryptionRequestPacket.PacketID:
			var data packets.S2CEncryptionRequestPacketData
			if err := p.UnmarshalData(&data); err != nil {
				return joinErr(ErrReadPacket, "decode encryption request: %w", err)
			}
			attempts, err := c.respondToEncryptionRequest(ctx, data, sessionAttempts)
			sessionAttempts = attempts
			if err != nil {
				return err
			}

		case packets.S2CSetCompressionPacket.PacketID:
			var data packets.S2CSetCompressionPacketData
			if err := p.UnmarshalData(&data); err != nil {
				return joinErr(ErrReadPacket, "decode set compression: %w", err)
			}
			c.conn.SetCompressionThreshold(int(data.Threshold))

		case packets.S2CLoginSuccessPacket.PacketID:
			var data packets.S2CLoginSuccessPacketData
			if err := p.UnmarshalData(&data); err != nil {
				return joinErr(ErrReadPacket, "decode login success: %w", err)
			}
			c.account.UUID = ns.UUID(data.UUID)
			c.account.Username = string(data.Username)

			ack := packets.C2SLoginAcknowledgedPacket
			if err := c.conn.WritePacket(ack); err != nil {
				return joinErr(ErrConnection, "send login acknowledged: %w", err)
			}
			c.conn.SetState(jp.StateConfiguration)
			return nil

		case packets.S2CLoginPluginRequestPacket.PacketID:
			// Plugin-channel login requests are outside this catalog; the
			// vanilla handshake never requires one to proceed, so leave it
			// unanswered rather than guess at a channel-specific payload.

		default:
			// Unknown login-phase packet: ignore and keep waiting for
			// LoginSuccess or Disconnect.
		}
	}
}

// respondToEncryptionRequest performs the shared-secret + session-server
// exchange. It returns the updated attempt count so the caller can track
// retries across multiple EncryptionRequest round trips (a server only sends
// one, but the counter is threaded through for clarity at the call site).
func (c *Client) respondToEncryptionRequest(ctx context.Context, data packets.S2CEncryptionRequestPacketData, attempts int) (int, error) {
	enc := c.conn.GetEncryption()
	secret, err := enc.GenerateSharedSecret()
	if err != nil {
		return attempts, joinErr(ErrAuth, "generate shared secret: %w", err)
	}

	for {
		attempts++
		accessToken := c.account.AccessToken
		err := c.sessionServer.Join(accessToken, c.account.UUID.String(), string(data.ServerID), secret, []byte(data.PublicKey))
		if err == nil {
			break
		}
		if !c.account.Online() || attempts >= maxSessionServerAttempts {
			return attempts, joinErr(ErrSessionServer, "session server join (account=%s): %w", c.account.Username, err)
		}
		login, refreshErr := c.account.Refresh.Refresh(ctx)
		if refreshErr != nil {
			return attempts, joinErr(ErrAuth, "refresh access token after session server rejection: %w", refreshErr)
		}
		c.account.AccessToken = login.AccessToken
	}

	encryptedSecret, err := enc.EncryptWithPublicKey([]byte(data.PublicKey), secret)
	if err != nil {
		return attempts, joinErr(ErrAuth, "encrypt shared secret: %w", err)
	}
	encryptedVerify, err := enc.EncryptWithPublicKey([]byte(data.PublicKey), []byte(data.VerifyTok))
	if err != nil {
		return attempts, joinErr(ErrAuth, "encrypt verify token: %w", err)
	}

	keyPacket, err := packets.C2SKeyPacket.WithData(packets.C2SKeyPacketData{
		SharedSecret: ns.PrefixedByteArray(encryptedSecret),
		VerifyToken:  ns.PrefixedByteArray(encryptedVerify),
	})
	if err != nil {
		return attempts, joinErr(ErrAuth, "encode encryption response: %w", err)
	}
	if err := c.conn.WritePacket(keyPacket); err != nil {
		return attempts, joinErr(ErrConnection, "send encryption response: %w", err)
	}

	if err := enc.EnableEncryption(); err != nil {
		return attempts, joinErr(ErrAuth, "enable encryption: %w", err)
	}
	return attempts, nil
}

// configurationPhase exchanges Client Information and Known Packs, then
// waits for FinishConfiguration, acknowledging it to switch to Play.
func (c *Client) configurationPhase(ctx context.Context) error {
	info, err := packets.C2SClientInformationPacket.WithData(c.clientInformation())
	if err != nil {
		return joinErr(ErrConnection, "encode client information: %w", err)
	}
	if err := c.conn.WritePacket(info); err != nil {
		return joinErr(ErrConnection, "send client information: %w", err)
	}

	for {
		p, err := c.conn.ReadPacket()
		if err != nil {
			return joinErr(ErrReadPacket, "read configuration packet: %w", err)
		}

		switch p.PacketID {
		case packets.S2CFinishConfigurationPacket.PacketID:
			if err := c.conn.WritePacket(packets.C2SFinishConfigurationPacket); err != nil {
				return joinErr(ErrConnection, "send finish configuration ack: %w", err)
			}
			c.conn.SetState(jp.StatePlay)
			return nil

		case packets.S2CKeepAliveConfigurationPacket.PacketID:
			var data packets.S2CKeepAliveConfigurationPacketData
			if err := p.UnmarshalData(&data); err != nil {
				return joinErr(ErrReadPacket, "decode configuration keep alive: %w", err)
			}
			reply, err := packets.C2SKeepAliveConfigurationPacket.WithData(packets.C2SKeepAliveConfigurationPacketData{KeepAliveID: data.ID})
			if err != nil {
				return joinErr(ErrConnection, "encode configuration keep alive: %w", err)
			}
			if err := c.conn.WritePacket(reply); err != nil {
				return joinErr(ErrConnection, "send configuration keep alive: %w", err)
			}

		case packets.S2CPingConfigurationPacket.PacketID:
			var data packets.S2CPingConfigurationPacketData
			if err := p.UnmarshalData(&data); err != nil {
				return joinErr(ErrReadPacket, "decode configuration ping: %w", err)
			}
			reply, err := packets.C2SPongConfigurationPacket.WithData(packets.C2SPongConfigurationPacketData{ID: data.ID})
			if err != nil {
				return joinErr(ErrConnection, "encode configuration pong: %w", err)
			}
			if err := c.conn.WritePacket(reply); err != nil {
				return joinErr(ErrConnection, "send configuration pong: %w", err)
			}

		default:
			// RegistryData/KnownPacks/AddResourcePack/etc. are outside this
			// catalog; vanilla servers proceed to FinishConfiguration without
			// requiring a response to any of them.
		}
	}
}
