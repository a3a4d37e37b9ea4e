// Command checkconfig validates a sensors file and prints the filter each
// sensor will apply.
//
// Usage:
//
//	go run ./cmd/checkconfig -sensors sensors.yaml
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/nws-warnings/internal/config"
)

func main() {
	path := flag.String("sensors", "sensors.yaml", "path to the sensors file")
	flag.Parse()

	os.Exit(run(os.Stdout, os.Stderr, *path))
}

func run(stdout, stderr io.Writer, path string) int {
	sensors, err := config.LoadSensors(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", path, err)
		return 1
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SENSOR\tNAME\tZONE\tSEVERITY\tMESSAGE TYPE\tWINDOW")
	for _, s := range sensors.Sensors {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			s.Name,
			describeZone(s),
			strings.Join(s.Severities.Strings(), ","),
			strings.Join(s.MessageTypes.Strings(), ","),
			describeWindow(s),
		)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintf(stdout, "\n%d sensor(s), %d zone(s) declared: OK\n", len(sensors.Sensors), len(sensors.Zones))
	return 0
}

func describeZone(s config.Sensor) string {
	if s.Location != nil {
		return fmt.Sprintf("%.4f,%.4f", s.Location.Latitude, s.Location.Longitude)
	}
	return s.Zone
}

func describeWindow(s config.Sensor) string {
	if s.ActiveOnly {
		return "active"
	}
	if s.ForecastDays == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", s.ForecastDays)
}
