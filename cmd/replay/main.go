package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anodyne74/obdcore/internal/capture"
)

func main() {
	var (
		traceFile string
		speed     float64
		list      bool
	)

	flag.StringVar(&traceFile, "file", "", "Trace file to replay")
	flag.Float64Var(&speed, "speed", 1.0, "Replay speed multiplier (1.0 = real-time)")
	flag.BoolVar(&list, "list", false, "List available trace files")
	flag.Parse()

	if list {
		listTraceFiles()
		return
	}

	if traceFile == "" {
		fmt.Println("Please specify a trace file with -file")
		os.Exit(1)
	}

	session, err := capture.LoadSession(traceFile)
	if err != nil {
		log.Fatalf("failed to load session: %v", err)
	}

	fmt.Printf("Replaying session from %s\n", session.StartTime)
	fmt.Printf("Vehicle Info: %s\n", session.VehicleInfo)
	fmt.Printf("Total events: %d\n", len(session.Events))

	if err := replay(session, speed); err != nil {
		log.Fatal(err)
	}
}

// replay prints each event at the pace it was originally captured,
// scaled by speed. speed <= 0 falls back to real-time.
func replay(session *capture.Session, speed float64) error {
	if len(session.Events) == 0 {
		return fmt.Errorf("no events to replay")
	}
	if speed <= 0 {
		speed = 1.0
	}

	start := time.Now()
	sessionStart := session.Events[0].Timestamp

	for _, ev := range session.Events {
		targetDelay := ev.Timestamp.Sub(sessionStart)
		adjustedDelay := time.Duration(float64(targetDelay) / speed)
		actualDelay := time.Since(start)
		if actualDelay < adjustedDelay {
			time.Sleep(adjustedDelay - actualDelay)
		}

		if ev.Direction == "TX" {
			fmt.Printf("> %s\n", ev.Command)
		} else {
			for _, line := range ev.Lines {
				fmt.Printf("< %s\n", line)
			}
		}
	}
	return nil
}

func listTraceFiles() {
	files, err := filepath.Glob("captures/*.json")
	if err != nil {
		log.Fatalf("failed to list trace files: %v", err)
	}

	if len(files) == 0 {
		fmt.Println("No trace files found")
		return
	}

	fmt.Println("Available trace files:")
	for _, file := range files {
		session, err := capture.LoadSession(file)
		if err != nil {
			fmt.Printf("  %s (error: %v)\n", file, err)
			continue
		}

		fmt.Printf("  %s:\n", filepath.Base(file))
		fmt.Printf("    Date: %s\n", session.StartTime)
		fmt.Printf("    Duration: %s\n", session.EndTime.Sub(session.StartTime))
		fmt.Printf("    Vehicle: %s\n", session.VehicleInfo)
		fmt.Printf("    Events: %d\n", len(session.Events))
		fmt.Println()
	}
}
