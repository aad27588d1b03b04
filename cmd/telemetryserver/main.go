// telemetryserver serves a browser dashboard over a websocket, pushing
// live readings and DTC state from a connected vehicle once a second.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/anodyne74/obdcore/internal/config"
	"github.com/anodyne74/obdcore/internal/datastore"
	"github.com/anodyne74/obdcore/internal/discovery"
	"github.com/anodyne74/obdcore/internal/obd"
	"github.com/anodyne74/obdcore/internal/session"
	"github.com/anodyne74/obdcore/internal/transport"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// TelemetryData is the JSON payload broadcast to every connected client
// once per tick.
type TelemetryData struct {
	VIN      string                  `json:"vin,omitempty"`
	Protocol string                  `json:"protocol,omitempty"`
	MILOn    bool                    `json:"milOn"`
	DTCCount int                     `json:"dtcCount"`
	DTCs     []string                `json:"dtcs,omitempty"`
	Readings map[string]*obd.Reading `json:"readings,omitempty"`
	Modules  []*discovery.Module     `json:"modules,omitempty"`
}

var (
	clients    = make(map[*websocket.Conn]bool)
	clientsMux sync.Mutex
)

func wsHandler(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	clientsMux.Lock()
	clients[ws] = true
	clientsMux.Unlock()

	defer func() {
		clientsMux.Lock()
		delete(clients, ws)
		clientsMux.Unlock()
		ws.Close()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

func broadcastTelemetry(data TelemetryData) {
	clientsMux.Lock()
	defer clientsMux.Unlock()

	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("error marshaling telemetry: %v", err)
		return
	}

	for client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("error sending to client: %v", err)
			client.Close()
			delete(clients, client)
		}
	}
}

var defaultLivePIDs = []string{"010C", "010D", "0105", "0104"}

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	router := mux.NewRouter()
	router.HandleFunc("/ws", wsHandler)
	router.PathPrefix("/").Handler(http.FileServer(http.Dir("static")))

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Printf("starting web server on http://%s", serverAddr)
		if err := http.ListenAndServe(serverAddr, router); err != nil {
			log.Fatal(err)
		}
	}()

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
		log.Fatalf("failed to connect to adapter: %v", err)
	}

	info, err := sess.GetVehicleInfo()
	if err != nil {
		log.Printf("warning: failed to read vehicle info: %v", err)
	}

	var modules []*discovery.Module
	if result, err := sess.Discover(discovery.DefaultOptions()); err != nil {
		log.Printf("warning: module discovery failed: %v", err)
	} else {
		modules = result.Modules
	}

	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		tick := 0
		for {
			select {
			case <-ticker.C:
				tick++
				telemetry := TelemetryData{
					Readings: sess.ReadLiveData(defaultLivePIDs, 2),
					Modules:  modules,
					Protocol: sess.Protocol(),
				}
				if info != nil {
					telemetry.VIN = info.VIN
					telemetry.MILOn = info.MILOn
					telemetry.DTCCount = info.DTCCount
				}

				if tick%10 == 0 {
					if codes, err := sess.ReadDTCs("stored"); err == nil {
						dtcs := make([]string, 0, len(codes))
						for _, c := range codes {
							dtcs = append(dtcs, c.Code)
						}
						telemetry.DTCs = dtcs
					}
				}

				broadcastTelemetry(telemetry)
			case <-stop:
				return
			}
		}
	}()

	go func() {
		defer close(done)
		<-stop

		clientsMux.Lock()
		for client := range clients {
			client.Close()
			delete(clients, client)
		}
		clientsMux.Unlock()

		sess.Disconnect()
		log.Println("cleanup completed")
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	close(stop)
	<-done
}
