// Package session ties the transport, OBD-II scanner, UDS client, DTC
// database, discovery sweep, and K-Line profile detection into one
// per-vehicle facade: connection state, cached VIN/protocol, and the
// clients that need the manufacturer hint to pick the right catalog.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/anodyne74/obdcore/internal/datastore"
	"github.com/anodyne74/obdcore/internal/discovery"
	"github.com/anodyne74/obdcore/internal/dtc"
	"github.com/anodyne74/obdcore/internal/elm"
	"github.com/anodyne74/obdcore/internal/kline"
	"github.com/anodyne74/obdcore/internal/obd"
	"github.com/anodyne74/obdcore/internal/telemetry"
	"github.com/anodyne74/obdcore/internal/transport"
	"github.com/anodyne74/obdcore/internal/uds"
)

// Session wraps one physical adapter connection: the ELM327 driver, an
// OBD-II scanner for Mode 01/02/03/04/07/09/0A work, and on-demand UDS
// transports/clients opened per discovered module. A VIN cache lets a
// reconnect to a known vehicle skip the discovery sweep.
type Session struct {
	mu sync.RWMutex

	driver  *elm.Driver
	scanner *obd.Scanner
	dtcDB   *dtc.Database
	cache   VINCache
	store   datastore.Store

	vin        string
	brandHint  string
	protocol   string
	addressing string
	modules    []*discovery.Module

	udsClients map[string]*uds.Client // keyed by module TxID

	metrics *telemetry.Metrics
}

// WithMetrics attaches a telemetry.Metrics instance that Discover and
// future instrumented calls will record observations against. Optional —
// a Session with no metrics attached simply skips recording.
func (s *Session) WithMetrics(m *telemetry.Metrics) *Session {
	s.metrics = m
	return s
}

// New builds a Session over t, seeded with manufacturerHint for DTC/UDS
// catalog lookups before a VIN is known. store may be nil to disable VIN
// caching and history persistence.
func New(t transport.Transport, manufacturerHint string, store datastore.Store) *Session {
	s := &Session{
		driver:     elm.New(t),
		dtcDB:      dtc.NewDatabase(manufacturerHint),
		brandHint:  manufacturerHint,
		store:      store,
		udsClients: make(map[string]*uds.Client),
	}
	s.scanner = obd.NewScanner(s.driver)
	if store != nil {
		s.cache = NewStoreVINCache(store)
	}
	return s
}

// Connect opens the adapter and negotiates an OBD-II protocol.
func (s *Session) Connect() error {
	return s.scanner.Connect()
}

// Disconnect closes the adapter connection.
func (s *Session) Disconnect() {
	s.scanner.Disconnect()
}

// IsConnected reports whether the adapter connection is open.
func (s *Session) IsConnected() bool {
	return s.scanner.IsConnected()
}

// Driver exposes the underlying ELM327 driver for K-Line profile work
// and raw AT-command access that the scanner doesn't cover.
func (s *Session) Driver() *elm.Driver {
	return s.driver
}

// GetVehicleInfo reads the VIN over Mode 09 (plus MIL status and stored
// code count over Mode 01; calibration ID and ECU name are not read),
// records the VIN on the session, and seeds the DTC database's
// manufacturer hint from the VIN cache if one is found.
func (s *Session) GetVehicleInfo() (*obd.VehicleInfo, error) {
	info, err := s.scanner.GetVehicleInfo()
	if err != nil {
		return nil, err
	}
	if info.VIN != "" {
		s.mu.Lock()
		s.vin = info.VIN
		s.mu.Unlock()
		s.applyCachedProfile(info.VIN)
	}
	return info, nil
}

func (s *Session) applyCachedProfile(vin string) {
	if s.cache == nil {
		return
	}
	entry, ok := s.cache.Get(vin)
	if !ok {
		return
	}
	s.mu.Lock()
	if entry.BrandHint != "" {
		s.brandHint = entry.BrandHint
		s.dtcDB.SetManufacturer(entry.BrandHint)
	}
	s.protocol = entry.Protocol
	s.addressing = entry.Addressing
	s.mu.Unlock()
}

// ReadDTCs reads stored ("03"), pending ("07"), or permanent ("0A") DTCs
// and decodes each against the DTC database, recording the readout when
// a store is configured.
func (s *Session) ReadDTCs(mode string) ([]dtc.Info, error) {
	codes, err := s.scanner.ReadDTCs(mode)
	if err != nil {
		return nil, err
	}
	infos := make([]dtc.Info, 0, len(codes))
	for _, code := range codes {
		if info, ok := s.dtcDB.Lookup(code); ok {
			infos = append(infos, info)
		} else {
			infos = append(infos, dtc.Info{Code: code, Description: "unknown code"})
		}
	}
	s.recordDTCReadout(mode, codes)
	return infos, nil
}

func (s *Session) recordDTCReadout(mode string, codes []string) {
	if s.store == nil {
		return
	}
	s.mu.RLock()
	vin := s.vin
	s.mu.RUnlock()
	if vin == "" {
		return
	}
	milOn, _, err := s.scanner.GetMILStatus()
	if err != nil {
		milOn = false
	}
	_ = s.store.SaveDTCReadout(vin, &datastore.DTCReadout{
		Timestamp: time.Now().UTC(),
		Mode:      mode,
		Codes:     codes,
		MILOn:     milOn,
	})
}

// ClearDTCs issues the Mode 04 clear command.
func (s *Session) ClearDTCs() (bool, error) {
	return s.scanner.ClearDTCs()
}

// GetMILStatus reports whether the malfunction indicator lamp is on and
// how many stored codes are present.
func (s *Session) GetMILStatus() (bool, int, error) {
	return s.scanner.GetMILStatus()
}

// ReadFreezeFrame reads the Mode 02 freeze frame captured at the first
// DTC that set the MIL.
func (s *Session) ReadFreezeFrame() (*obd.FreezeFrame, error) {
	return s.scanner.ReadFreezeFrame()
}

// ReadReadiness reads Mode 01 PID 01 continuous and non-continuous
// monitor status.
func (s *Session) ReadReadiness() (map[string]obd.MonitorStatus, error) {
	return s.scanner.ReadReadiness()
}

// ReadPID reads a single Mode 01 PID.
func (s *Session) ReadPID(pid string, roundTo int, allowEmpty bool) (*obd.Reading, error) {
	reading, err := s.scanner.ReadPID(pid, roundTo, allowEmpty)
	if err != nil {
		return nil, err
	}
	s.recordTelemetry(pid, reading)
	return reading, nil
}

// ReadLiveData reads a batch of Mode 01 PIDs in one pass.
func (s *Session) ReadLiveData(pids []string, roundTo int) map[string]*obd.Reading {
	readings := s.scanner.ReadLiveData(pids, roundTo)
	for pid, reading := range readings {
		s.recordTelemetry(pid, reading)
	}
	return readings
}

func (s *Session) recordTelemetry(pid string, reading *obd.Reading) {
	if s.store == nil || reading == nil || reading.Value == nil {
		return
	}
	s.mu.RLock()
	vin := s.vin
	s.mu.RUnlock()
	if vin == "" {
		return
	}
	_ = s.store.SaveTelemetry(vin, &datastore.TelemetryPoint{
		Timestamp: time.Now().UTC(),
		VIN:       vin,
		PID:       pid,
		Value:     *reading.Value,
		Unit:      reading.Unit,
	})
}

// SelfTest runs the scanner's built-in connectivity and PID-support
// checks.
func (s *Session) SelfTest() *obd.SelfTestResult {
	return s.scanner.SelfTest()
}

// Discover runs a UDS module discovery sweep, applies a brand hint from
// any VIN found, caches the result, and returns the modules found.
func (s *Session) Discover(opts discovery.Options) (*discovery.Result, error) {
	if opts.BrandHint == "" {
		s.mu.RLock()
		opts.BrandHint = s.brandHint
		s.mu.RUnlock()
	}
	result := discovery.Discover(s.driver, opts)
	if s.metrics != nil {
		s.metrics.DiscoveryDuration.Observe(result.Elapsed.Seconds())
	}
	if result.Err != nil {
		return result, result.Err
	}
	if s.metrics != nil {
		s.metrics.DiscoveryModules.Set(float64(len(result.Modules)))
		for _, m := range result.Modules {
			s.metrics.ObserveDiscoveryModule(m.TxID, m.ModuleType, m.Confidence)
		}
	}

	s.mu.Lock()
	s.protocol = result.Protocol
	s.addressing = result.Addressing
	s.modules = result.Modules
	if result.VIN != "" {
		s.vin = result.VIN
	}
	vin := s.vin
	brandHint := s.brandHint
	s.mu.Unlock()

	if s.store != nil && vin != "" {
		_ = s.store.SaveDiscoveryResult(vin, &datastore.DiscoveryRecord{
			Timestamp:   time.Now().UTC(),
			Protocol:    result.Protocol,
			Addressing:  result.Addressing,
			ModuleCount: len(result.Modules),
			ElapsedMS:   result.Elapsed.Milliseconds(),
		})
	}
	if s.cache != nil && vin != "" {
		_ = s.cache.Set(vin, brandHint, result.Protocol, result.Addressing, result.Modules)
	}
	return result, nil
}

// Modules returns the most recently discovered module list.
func (s *Session) Modules() []*discovery.Module {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modules
}

// UDSClient returns (opening and caching if necessary) a UDS client
// addressed at the given module, resolved against the protocol and
// addressing mode learned during discovery.
func (s *Session) UDSClient(module *discovery.Module) (*uds.Client, error) {
	if module == nil {
		return nil, fmt.Errorf("session: nil module")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, ok := s.udsClients[module.TxID]; ok {
		return client, nil
	}

	protocol := module.Protocol
	if protocol == "" {
		protocol = s.protocol
	}
	t := uds.NewTransport(s.driver, module.TxID, module.RxID, protocol)
	if err := t.Configure(); err != nil {
		return nil, fmt.Errorf("session: configuring UDS transport for %s: %w", module.TxID, err)
	}
	client := uds.NewClient(t, s.brandHint)
	s.udsClients[module.TxID] = client
	return client, nil
}

// DetectKLineProfile runs candidate K-Line profiles against the adapter
// in order and returns the first one that verifies, for vehicles too old
// for CAN-based OBD-II/UDS.
func (s *Session) DetectKLineProfile(candidates []kline.Profile, policy kline.Policy) (*kline.Profile, error) {
	return kline.DetectProfile(s.driver, candidates, policy)
}

// SetManufacturerHint changes the active brand hint, fanning the change
// out to the DTC database so subsequent ReadDTCs calls decode against the
// new manufacturer's catalog. UDS clients already opened keep the brand
// they were created with; call UDSClient again after a module
// rediscovery to pick up the new hint.
func (s *Session) SetManufacturerHint(hint string) {
	s.mu.Lock()
	s.brandHint = hint
	s.mu.Unlock()
	s.dtcDB.SetManufacturer(hint)
}

// VIN returns the most recently learned VIN, if any.
func (s *Session) VIN() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vin
}

// Protocol returns the ATSP protocol code learned from the last Discover
// or VIN-cache hit (empty before either); it is a code, not a name.
func (s *Session) Protocol() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.protocol
}
