package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/anodyne74/obdcore/internal/capture"
)

func main() {
	var inputFile string
	flag.StringVar(&inputFile, "file", "", "Trace file to analyze")
	flag.Parse()

	if inputFile == "" {
		fmt.Println("Please specify a trace file with -file")
		os.Exit(1)
	}

	session, err := capture.LoadSession(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load session: %v\n", err)
		os.Exit(1)
	}

	summary := summarize(session)

	fmt.Printf("\nTrace Analysis for %s\n", filepath.Base(inputFile))
	fmt.Printf("=================================\n")
	fmt.Printf("Duration: %s\n", session.EndTime.Sub(session.StartTime))
	fmt.Printf("Vehicle: %s\n", session.VehicleInfo)
	fmt.Printf("Total Events: %d (%d TX, %d RX)\n", summary.total, summary.tx, summary.rx)
	fmt.Printf("\nCommand Frequency:\n")

	commands := make([]string, 0, len(summary.byCommand))
	for cmd := range summary.byCommand {
		commands = append(commands, cmd)
	}
	sort.Strings(commands)
	for _, cmd := range commands {
		fmt.Printf("  %-10s %d\n", cmd, summary.byCommand[cmd])
	}

	if summary.noDataCount > 0 {
		fmt.Printf("\nNO DATA responses: %d\n", summary.noDataCount)
	}
}

type traceSummary struct {
	total       int
	tx          int
	rx          int
	byCommand   map[string]int
	noDataCount int
}

// summarize counts events by direction and command, a much simpler report
// than a performance-analytics pass since a trace session holds raw
// AT/OBD lines rather than decoded CAN telemetry.
func summarize(session *capture.Session) traceSummary {
	s := traceSummary{byCommand: make(map[string]int)}
	for _, ev := range session.Events {
		s.total++
		switch ev.Direction {
		case "TX":
			s.tx++
		case "RX":
			s.rx++
			for _, line := range ev.Lines {
				if line == "NO DATA" {
					s.noDataCount++
				}
			}
		}
		s.byCommand[ev.Command]++
	}
	return s
}
