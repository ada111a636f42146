package client

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/go-mclib/bot/world"
)

// readLoop pulls packets off the wire and pushes them to World.Inbound for
// the Update schedule's PacketDispatchSystem to drain. It never mutates the
// world directly: packet receipt is I/O, dispatch is simulation.
func (c *Client) readLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if conn := c.conn.GetConn(); conn != nil {
			_ = conn.SetReadDeadline(time.Now().Add(keepAliveTimeout))
		}

		p, err := c.conn.ReadPacket()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				c.bus.Emit(world.Event{Kind: world.EventDisconnect, Payload: world.DisconnectPayload{Reason: "connection closed by server"}})
				return err
			}
			c.logger.Warn("read loop stopping on I/O error", zap.Error(err))
			c.bus.Emit(world.Event{Kind: world.EventDisconnect, Payload: world.DisconnectPayload{Reason: err.Error()}})
			return err
		}

		c.world.Inbound.Push(p)
		c.sched.RaiseSignal()
	}
}

// writeLoop drains World.Outbound and writes each packet to the wire. It
// runs independently of the tick loop so a queued chat message or pathfinder
// movement packet isn't held up behind a fixed-tick stall.
func (c *Client) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, p := range c.world.Outbound.Drain() {
				if err := c.conn.WritePacket(p); err != nil {
					c.logger.Warn("write loop stopping on I/O error", zap.Error(err))
					return err
				}
			}
		}
	}
}
