package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/go-mclib/bot/client"
	"github.com/go-mclib/bot/world"
)

func main() {
	address := flag.String("address", "localhost:25565", "server address (host or host:port)")
	username := flag.String("username", "bot", "username to join with (offline mode)")
	debug := flag.Bool("debug", false, "log raw packet traffic")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	account := client.OfflineAccount(*username)
	c := client.NewClient(account, *address, client.WithLogger(logger), client.WithDebug(*debug))

	// Subscribe before Join so nothing emitted during the handshake (Init,
	// Login) is missed; EventBus replays both to a subscriber that arrives
	// late anyway, but subscribing first is the natural order.
	events := c.Events()
	go func() {
		for ev := range events {
			logEvent(logger, ev)
		}
	}()

	if err := c.Join(ctx); err != nil {
		logger.Fatal("join failed", zap.Error(err))
	}
	logger.Info("connected", zap.String("address", *address), zap.String("username", *username))

	<-ctx.Done()
	logger.Info("shutting down")
	c.Disconnect()
	_ = c.Wait()
}

func logEvent(logger *zap.Logger, ev world.Event) {
	switch p := ev.Payload.(type) {
	case world.ChatPayload:
		logger.Info("chat", zap.String("message", p.Message))
	case world.DisconnectPayload:
		logger.Warn("disconnected", zap.String("reason", p.Reason))
	case world.DeathPayload:
		logger.Warn("died")
	default:
		logger.Debug("event", zap.String("kind", ev.Kind.String()))
	}
}
