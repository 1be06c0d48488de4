package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/annel0/mmo-cavein/internal/cavein"
	"github.com/annel0/mmo-cavein/internal/eventbus"
	"github.com/annel0/mmo-cavein/internal/world/entity"
)

const (
	defaultNATSURL = "nats://127.0.0.1:4222"
	timeFormat     = "15:04:05.000"
)

func main() {
	var (
		natsURL    = flag.String("url", defaultNATSURL, "NATS server URL")
		stream     = flag.String("stream", "EVENTS", "JetStream stream name")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		limit      = flag.Int("limit", 0, "Stop after N events (0 = unlimited)")
		timeout    = flag.Duration("timeout", 0, "Stop after duration (0 = until Ctrl+C)")
	)
	flag.Parse()

	bus, err := eventbus.NewJetStreamBus(*natsURL, *stream, 24*time.Hour)
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	filter := eventbus.Filter{Types: parseStringList(*eventTypes)}
	fmt.Printf("🎬 Tailing %s on %s (types: %v, limit: %d)\n", *stream, *natsURL, filter.Types, *limit)

	var seen atomic.Int64
	sub, err := bus.Subscribe(ctx, filter, func(ctx context.Context, ev *eventbus.Envelope) {
		fmt.Println(formatEvent(ev))
		if n := seen.Add(1); *limit > 0 && n >= int64(*limit) {
			stop()
		}
	})
	if err != nil {
		log.Fatalf("❌ Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	fmt.Printf("📊 Received %d events\n", seen.Load())
}

// formatEvent печатает событие одной строкой с расшифровкой известных типов
func formatEvent(ev *eventbus.Envelope) string {
	head := fmt.Sprintf("[%s] %-22s src=%-7s", ev.Timestamp.Local().Format(timeFormat), ev.EventType, ev.Source)

	switch ev.EventType {
	case eventbus.EventCollapse:
		var c cavein.CollapseEvent
		if err := ev.Decode(&c); err == nil {
			line := fmt.Sprintf("%s 🪨 %v blocks=%d layers=%d cause=%s trigger=%s instability=%.2f",
				head, c.Pos, c.Count, c.Layers, c.Cause, c.Trigger, c.Instability)
			if c.ExplosionCenter != nil {
				line += fmt.Sprintf(" center=%v", *c.ExplosionCenter)
			}
			return line
		}
	case eventbus.EventBlockLanded:
		var l entity.LandEvent
		if err := ev.Decode(&l); err == nil {
			return fmt.Sprintf("%s ⬇️  %v -> %v fall=%d damage=%.1f dropped=%v",
				head, l.Origin, l.Pos, l.FallDistance, l.ImpactDamage, l.Dropped)
		}
	}
	return fmt.Sprintf("%s %s", head, string(ev.Payload))
}

func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
