package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anodyne74/obdcore/internal/config"
	"github.com/anodyne74/obdcore/internal/datastore"
	"github.com/anodyne74/obdcore/internal/discovery"
	"github.com/anodyne74/obdcore/internal/obd"
	"github.com/anodyne74/obdcore/internal/session"
	"github.com/anodyne74/obdcore/internal/transport"
)

func main() {
	var (
		configPath string
		queryType  string
		outputFile string
		continuous bool
		formatJSON bool
		pidList    string
	)

	flag.StringVar(&configPath, "config", "config.yaml", "Path to session config file")
	flag.StringVar(&queryType, "query", "all", "Type of query: all, dtcs, modules, live")
	flag.StringVar(&outputFile, "output", "", "Output file for the query results")
	flag.BoolVar(&continuous, "continuous", false, "Enable continuous live-data monitoring")
	flag.BoolVar(&formatJSON, "json", false, "Output in JSON format")
	flag.StringVar(&pidList, "pids", "010C,010D,0105", "Comma-separated PIDs for -query=live")
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

	switch queryType {
	case "all":
		info, err := sess.GetVehicleInfo()
		if err != nil {
			log.Fatalf("failed to query vehicle info: %v", err)
		}
		outputData(info, outputFile, formatJSON)

	case "dtcs":
		codes, err := sess.ReadDTCs("stored")
		if err != nil {
			log.Fatalf("failed to query DTCs: %v", err)
		}
		outputData(codes, outputFile, formatJSON)

	case "modules":
		result, err := sess.Discover(discovery.DefaultOptions())
		if err != nil {
			log.Fatalf("failed to discover modules: %v", err)
		}
		outputData(result, outputFile, formatJSON)

	case "live":
		pids := splitPIDs(pidList)
		if continuous {
			fmt.Println("Starting continuous monitoring... (Ctrl+C to stop)")
			for {
				readings := sess.ReadLiveData(pids, 2)
				if formatJSON {
					b, _ := json.MarshalIndent(readings, "", "  ")
					fmt.Println(string(b))
				} else {
					printReadings(readings)
				}
				time.Sleep(time.Second)
			}
		}
		readings := sess.ReadLiveData(pids, 2)
		outputData(readings, outputFile, formatJSON)

	default:
		fmt.Printf("Unknown query type %q\n", queryType)
		os.Exit(1)
	}
}

func splitPIDs(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func printReadings(readings map[string]*obd.Reading) {
	for pid, r := range readings {
		if r == nil || r.Value == nil {
			fmt.Printf("%s: n/a\n", pid)
			continue
		}
		fmt.Printf("%s: %.2f %s\n", pid, *r.Value, r.Unit)
	}
}

func outputData(data interface{}, outputFile string, formatJSON bool) {
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			log.Fatalf("failed to create output file: %v", err)
		}
		defer file.Close()

		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			log.Fatalf("failed to write data: %v", err)
		}
		return
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal data: %v", err)
	}
	fmt.Println(string(b))
}
