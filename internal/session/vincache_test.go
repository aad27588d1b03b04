package session

import (
	"testing"
	"time"

	"github.com/anodyne74/obdcore/internal/datastore"
	"github.com/anodyne74/obdcore/internal/discovery"
)

// memStore is a minimal in-memory datastore.Store for exercising
// StoreVINCache without a real SQLite/InfluxDB backend.
type memStore struct {
	entries map[string]*datastore.VINCacheEntry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]*datastore.VINCacheEntry)}
}

func (m *memStore) SaveVINCacheEntry(entry *datastore.VINCacheEntry) error {
	m.entries[entry.VIN] = entry
	return nil
}

func (m *memStore) GetVINCacheEntry(vin string) (*datastore.VINCacheEntry, error) {
	e, ok := m.entries[vin]
	if !ok {
		return nil, errNotFound
	}
	return e, nil
}

func (m *memStore) ListVINCacheEntries() ([]*datastore.VINCacheEntry, error) {
	var out []*datastore.VINCacheEntry
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *memStore) DeleteVINCacheEntry(vin string) error {
	delete(m.entries, vin)
	return nil
}

func (m *memStore) SaveDiscoveryResult(vin string, result *datastore.DiscoveryRecord) error {
	return nil
}

func (m *memStore) GetDiscoveryResults(vin string, start, end time.Time) ([]*datastore.DiscoveryRecord, error) {
	return nil, nil
}

func (m *memStore) SaveDTCReadout(vin string, readout *datastore.DTCReadout) error {
	return nil
}

func (m *memStore) GetDTCHistory(vin string, start, end time.Time) ([]*datastore.DTCReadout, error) {
	return nil, nil
}

func (m *memStore) SaveTelemetry(vin string, point *datastore.TelemetryPoint) error {
	return nil
}

func (m *memStore) GetTelemetry(vin string, start, end time.Time) ([]*datastore.TelemetryPoint, error) {
	return nil, nil
}

func (m *memStore) GetLatestTelemetry(vin string) (*datastore.TelemetryPoint, error) {
	return nil, errNotFound
}

func (m *memStore) Close() error { return nil }

type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var errNotFound = notFoundError{}

func TestStoreVINCacheSetAndGet(t *testing.T) {
	store := newMemStore()
	cache := NewStoreVINCache(store)

	modules := []*discovery.Module{{TxID: "7E0", RxID: "7E8", Protocol: "6"}}
	if err := cache.Set(" 1c4rjfag5fc123456 ", "jeep", "6", "11bit", modules); err != nil {
		t.Fatalf("Set: %v", err)
	}

	entry, ok := cache.Get("1C4RJFAG5FC123456")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if entry.BrandHint != "jeep" || entry.Protocol != "6" || entry.Addressing != "11bit" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestStoreVINCacheMiss(t *testing.T) {
	cache := NewStoreVINCache(newMemStore())
	if _, ok := cache.Get("UNKNOWNVIN"); ok {
		t.Fatal("expected cache miss")
	}
}

func TestStoreVINCacheNilStore(t *testing.T) {
	var cache StoreVINCache
	if err := cache.Set("VIN", "jeep", "6", "11bit", nil); err != nil {
		t.Fatalf("Set on nil store should be a no-op: %v", err)
	}
	if _, ok := cache.Get("VIN"); ok {
		t.Fatal("expected miss on nil store")
	}
}

func TestNormalizeVIN(t *testing.T) {
	if got := normalizeVIN("  1c4rjfag5fc123456  "); got != "1C4RJFAG5FC123456" {
		t.Fatalf("normalizeVIN: got %q", got)
	}
}
