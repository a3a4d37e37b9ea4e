// Command replay runs the sensor filter and projection over a saved NWS
// alerts response at a fixed instant and prints each sensor's state. Zones
// must be declared in the sensors file with coordinates; Home Assistant and
// the NWS API are not contacted.
//
// Usage:
//
//	go run ./cmd/replay \
//	  -sensors sensors.yaml \
//	  -alerts internal/adapter/nws/testdata/alerts.json \
//	  -at 2026-01-16T12:00:00Z
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/nws-warnings/internal/adapter/nws"
	"github.com/couchcryptid/nws-warnings/internal/config"
	"github.com/couchcryptid/nws-warnings/internal/domain"
	"github.com/couchcryptid/nws-warnings/internal/zone"
	"github.com/jonboulle/clockwork"
)

func main() {
	sensorsPath := flag.String("sensors", "sensors.yaml", "path to the sensors file")
	alertsPath := flag.String("alerts", "", "path to a saved NWS alerts GeoJSON response")
	at := flag.String("at", "", "evaluation instant, RFC 3339 (default now)")
	flag.Parse()

	if *alertsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	now := time.Now()
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			log.Fatalf("invalid -at: %v", err)
		}
		now = t
	}

	if err := run(os.Stdout, *sensorsPath, *alertsPath, now); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer, sensorsPath, alertsPath string, now time.Time) error {
	sensors, err := config.LoadSensors(sensorsPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(alertsPath)
	if err != nil {
		return fmt.Errorf("read alerts: %w", err)
	}
	alerts, err := nws.DecodeAlerts(data)
	if err != nil {
		return err
	}

	// A fixed clock makes the output reproducible.
	clock := clockwork.NewFakeClockAt(now)
	resolver := zone.NewResolver(sensors.Zones, nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	snapshots := make([]domain.Snapshot, 0, len(sensors.Sensors))
	for _, s := range sensors.Sensors {
		z, err := resolver.Resolve(context.Background(), s)
		if err != nil {
			return fmt.Errorf("%s: %w", s.ID, err)
		}
		filter, err := domain.NewAlertFilter(s.FilterConfig(z), clock)
		if err != nil {
			return fmt.Errorf("%s: %w", s.ID, err)
		}
		snapshots = append(snapshots, domain.Snapshot{
			SensorID:    s.ID,
			Name:        s.Name,
			Icon:        s.Icon,
			Zone:        z.ID,
			SensorState: domain.Project(filter.Filter(alerts)),
			UpdatedAt:   clock.Now(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshots)
}
