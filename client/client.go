// Package client is the high-level, session-aware entry point: it drives a
// connection through the handshake/login/configuration/play phase machine,
// owns the read/write/tick loops once Play is reached, and exposes the
// world, pathfinder and chat surface a bot program actually calls.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	jp "github.com/go-mclib/bot/java_protocol"
	"github.com/go-mclib/bot/java_protocol/packets"
	"github.com/go-mclib/bot/java_protocol/session_server"
	ns "github.com/go-mclib/bot/net_structures"
	"github.com/go-mclib/bot/pathfinder"
	"github.com/go-mclib/bot/world"
)

// maxSessionServerAttempts bounds the join retry: one attempt with the
// current access token, one retry after a token refresh. A second failure
// after refreshing is treated as fatal rather than looping forever against a
// session server that keeps rejecting the account.
const maxSessionServerAttempts = 2

// ClientOption configures a Client before Join is called.
type ClientOption func(*Client)

// WithLogger installs a structured logger; the default is zap.NewNop().
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithViewDistance sets the render distance (in chunks) advertised in
// Client Information during configuration. Default 10.
func WithViewDistance(chunks int) ClientOption {
	return func(c *Client) { c.viewDistance = chunks }
}

// WithLocale sets the locale advertised in Client Information. Default "en_us".
func WithLocale(locale string) ClientOption {
	return func(c *Client) { c.locale = locale }
}

// WithDebug turns on the underlying TCP client's verbose packet logging.
func WithDebug(enabled bool) ClientOption {
	return func(c *Client) { c.debug = enabled }
}

// WithSessionServerURL points the encryption-phase Join request at a
// non-default session server (a test double, or a proxy implementing the
// same API). The default is Mojang's production session server.
func WithSessionServerURL(url string) ClientOption {
	return func(c *Client) { c.sessionServer = session_server.NewClientWithURL(url) }
}

// Client is a single connected session to one Minecraft server.
type Client struct {
	account Account
	address string

	conn          *jp.TCPClient
	sessionServer *session_server.SessionServerClient

	world *world.World
	bus   *world.EventBus
	sched *world.Scheduler

	logger       *zap.Logger
	viewDistance int
	locale       string
	debug        bool

	group  *errgroup.Group
	cancel context.CancelFunc

	closeOnce sync.Once
}

// NewClient builds a Client for account that will dial address
// ("host", "host:port", or an SRV-capable bare hostname) when Join is called.
func NewClient(account Account, address string, opts ...ClientOption) *Client {
	c := &Client{
		account:       account,
		address:       address,
		conn:          jp.NewTCPClient(),
		sessionServer: session_server.NewSessionServerClient(),
		world:         world.NewWorld(),
		bus:           world.NewEventBus(),
		logger:        zap.NewNop(),
		viewDistance:  10,
		locale:        "en_us",
	}
	for _, opt := range opts {
		opt(c)
	}
	c.world.SetLogger(c.logger)
	c.conn.EnableDebug(c.debug)
	c.bus.Emit(world.Event{Kind: world.EventInit})
	return c
}

// World exposes the entity-component store and chunked terrain backing this
// session, for systems that need to read position/health/inventory state or
// register additional fixed/update systems before Join.
func (c *Client) World() *world.World { return c.world }

// Events returns a channel of world events (chat, death, player add/remove,
// tick, disconnect, pathfinder outcomes). Each call opens an independent
// subscriber; a slow consumer loses its oldest backlog rather than stalling
// the schedule runner. Init and Login are replayed to every new subscriber
// even if Events is called after they were emitted, since both happen once
// and early (Init in NewClient, Login at the end of Join), before most
// callers get a chance to subscribe.
func (c *Client) Events() <-chan world.Event { return c.bus.Subscribe() }

// Join dials address, drives the handshake through to Play, then starts the
// read loop, write loop and tick scheduler. It returns once Play is reached;
// the loops continue running in the background until ctx is canceled or
// Disconnect is called.
func (c *Client) Join(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if err := c.conn.Connect(c.address); err != nil {
		cancel()
		return joinErr(ErrConnection, "dial %s: %w", c.address, err)
	}

	if err := c.handshake(runCtx); err != nil {
		cancel()
		_ = c.conn.Close()
		return err
	}

	local := c.bindLocalPlayer()
	c.world.SetLocalPlayer(local)
	c.world.Alive.Set(local, world.ConnectionAlive{Alive: true})

	g, gctx := errgroup.WithContext(runCtx)
	c.group = g
	c.sched = world.NewScheduler(c.world, c.bus,
		[]world.System{pathfinder.ExecutorSystem, world.MovementOutputSystem},
		[]world.System{world.PacketDispatchSystem, world.DisconnectSystem},
	)

	g.Go(func() error { return c.readLoop(gctx) })
	g.Go(func() error { return c.writeLoop(gctx) })
	g.Go(func() error { return c.sched.Run(gctx) })

	go func() {
		<-gctx.Done()
		// Unblock a read or write still parked on the socket.
		if conn := c.conn.GetConn(); conn != nil {
			_ = conn.SetDeadline(time.Now())
		}
		c.world.Lock()
		c.world.Alive.Set(c.world.LocalPlayer(), world.ConnectionAlive{Alive: false})
		c.world.Unlock()
		cancel()
	}()

	c.bus.Emit(world.Event{Kind: world.EventLogin, Payload: world.LoginPayload{
		Entity:  local,
		Profile: profileOf(c.world, local),
	}})
	return nil
}

func profileOf(w *world.World, id world.EntityID) world.GameProfile {
	p, _ := w.Profiles.Get(id)
	return p
}

// bindLocalPlayer spawns (or reuses, if this World was reconnected) the
// entity representing this account and attaches its profile. This catalog
// has no dedicated Play-phase join packet, so the local player is bound
// directly off the login-phase LoginSuccess identity rather than waiting
// for one.
func (c *Client) bindLocalPlayer() world.EntityID {
	if id, ok := c.world.EntityByUUID(c.account.UUID); ok {
		return id
	}
	id := c.world.Spawn()
	c.world.Profiles.Set(id, world.GameProfile{UUID: c.account.UUID, Name: c.account.Username})
	c.world.Positions.Set(id, world.Position{})
	c.world.Rotations.Set(id, world.Rotation{})
	c.world.Physics.Set(id, world.PhysicsState{})
	c.world.Movement.Set(id, world.MovementIntent{})
	return id
}

// Wait blocks until every loop (read, write, tick) has stopped, returning the
// first non-context-canceled error any of them produced.
func (c *Client) Wait() error {
	if c.group == nil {
		return nil
	}
	if err := c.group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// Disconnect closes the connection and stops all loops. Safe to call more
// than once; idempotent after the first call.
func (c *Client) Disconnect() {
	c.closeOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		_ = c.conn.Close()
	})
}

// WritePacket enqueues p for the write loop and wakes the scheduler so a
// request that doesn't originate from a fixed-tick system (e.g. a user
// calling Chat) is flushed promptly instead of waiting for the next tick.
func (c *Client) WritePacket(p *jp.Packet) {
	c.world.Outbound.Push(p)
	if c.sched != nil {
		c.sched.RaiseSignal()
	}
}

// Chat sends an unsigned chat message. Message signing is out of scope; this
// mirrors what a vanilla server accepts from a client with chat reporting
// disabled.
func (c *Client) Chat(message string) error {
	p, err := packets.C2SChatMessagePacket.WithData(packets.C2SChatMessagePacketData{Message: ns.String(message)})
	if err != nil {
		return fmt.Errorf("encode chat message: %w", err)
	}
	c.WritePacket(p)
	return nil
}

// SetClientInformation resends Client Information (view distance, locale,
// etc), as a vanilla client does on settings change.
func (c *Client) SetClientInformation() error {
	p, err := packets.C2SClientInformationPacket.WithData(c.clientInformation())
	if err != nil {
		return fmt.Errorf("encode client information: %w", err)
	}
	c.WritePacket(p)
	return nil
}

func (c *Client) clientInformation() packets.C2SClientInformationPacketData {
	return packets.C2SClientInformationPacketData{
		Locale:              ns.String(c.locale),
		ViewDistance:        ns.Byte(c.viewDistance),
		ChatMode:            ns.VarInt(packets.ChatModeEnabled),
		ChatColors:          ns.Boolean(true),
		DisplayedSkinParts:  ns.UnsignedByte(0x7F),
		MainHand:            ns.VarInt(packets.MainHandRight),
		EnableTextFiltering: ns.Boolean(false),
		AllowServerListings: ns.Boolean(true),
		ParticleStatus:      ns.VarInt(packets.ParticleStatusAll),
	}
}

// Goto starts pathfinding the local player toward goal, replacing any path
// already in progress.
func (c *Client) Goto(goal world.Goal) {
	pathfinder.Goto(c.world, c.bus, c.world.LocalPlayer(), goal)
}

// StopPathfinding cancels any path currently in progress and clears
// MovementIntent so the next tick stops sending movement input.
func (c *Client) StopPathfinding() {
	pathfinder.Stop(c.world, c.world.LocalPlayer())
}

// keepAliveTimeout is how long the read loop tolerates silence from the
// server before treating the connection as dead. Vanilla servers send a
// Keep Alive at least every 15s; allow for jitter and a slow link.
const keepAliveTimeout = 30 * time.Second
