// scan sweeps a connected vehicle's bus for responding UDS modules (or,
// for K-Line vehicles, tries each candidate wire-protocol profile) and
// prints what it finds.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/anodyne74/obdcore/internal/config"
	"github.com/anodyne74/obdcore/internal/datastore"
	"github.com/anodyne74/obdcore/internal/discovery"
	"github.com/anodyne74/obdcore/internal/kline"
	"github.com/anodyne74/obdcore/internal/session"
	"github.com/anodyne74/obdcore/internal/transport"
)

func main() {
	var (
		configPath string
		mode       string
		formatJSON bool
	)

	flag.StringVar(&configPath, "config", "config.yaml", "Path to session config file")
	flag.StringVar(&mode, "mode", "uds", "Scan mode: uds (CAN module discovery) or kline (ISO9141/KWP profile detect)")
	flag.BoolVar(&formatJSON, "json", false, "Output in JSON format")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	t, err := transport.NewTransport(cfg.GetTransportConfig())
	if err != nil {
		log.Fatal(err)
	}

	var store datastore.Store
	if sqlitePath, influxURL, influxOrg, influxBucket, influxToken := cfg.GetDatastoreConfig(); sqlitePath != "" {
		store, err = datastore.NewStore(&datastore.Config{
			SQLitePath:     sqlitePath,
			InfluxDBURL:    influxURL,
			InfluxDBOrg:    influxOrg,
			InfluxDBToken:  influxToken,
			InfluxDBBucket: influxBucket,
		})
		if err != nil {
			log.Fatalf("failed to open datastore: %v", err)
		}
	}

	sess := session.New(t, cfg.Vehicle.ManufacturerHint, store)
	if err := sess.Connect(); err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer sess.Disconnect()

	switch mode {
	case "uds":
		opts := discovery.Options{
			IDStart:      parseHexOr(cfg.Discovery.IDStartHex, 0x700),
			IDEnd:        parseHexOr(cfg.Discovery.IDEndHex, 0x7FF),
			Timeout:      cfg.DiscoveryTimeout(),
			Retries:      cfg.Discovery.Retries,
			Try250k:      cfg.Discovery.Try250k,
			Include29Bit: cfg.Discovery.Include29Bit,
			StopOnFirst:  cfg.Discovery.StopOnFirst,
			ConfirmVIN:   cfg.Discovery.ConfirmVIN,
			ConfirmDTCs:  cfg.Discovery.ConfirmDTCs,
		}
		result, err := sess.Discover(opts)
		if err != nil {
			log.Fatalf("discovery failed: %v", err)
		}
		printResult(result, formatJSON)

	case "kline":
		profile, err := sess.DetectKLineProfile(kline.BuiltinProfiles(), kline.DefaultPolicy())
		if err != nil {
			log.Fatalf("profile detection failed: %v", err)
		}
		printProfile(profile, formatJSON)

	default:
		fmt.Printf("unknown scan mode %q\n", mode)
		os.Exit(1)
	}
}

func parseHexOr(s string, def int) int {
	if s == "" {
		return def
	}
	var v int
	if _, err := fmt.Sscanf(s, "%x", &v); err != nil {
		return def
	}
	return v
}

func printResult(result *discovery.Result, formatJSON bool) {
	if formatJSON {
		b, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(b))
		return
	}

	fmt.Printf("Discovery run %s: protocol=%s addressing=%s elapsed=%s\n",
		result.CorrelationID, result.Protocol, result.Addressing, result.Elapsed)
	if result.VIN != "" {
		fmt.Printf("VIN: %s\n", result.VIN)
	}
	for _, m := range result.Modules {
		fmt.Printf("  %s -> %s  type=%s confidence=%d\n", m.TxID, m.RxID, m.ModuleType, m.Confidence)
	}
	if result.Err != nil {
		fmt.Printf("error: %v\n", result.Err)
	}
}

func printProfile(profile *kline.Profile, formatJSON bool) {
	if formatJSON {
		b, _ := json.MarshalIndent(profile, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Detected K-Line profile: %s\n", profile.Name)
}
