package datastore

import (
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreVINCacheRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	entry := &VINCacheEntry{
		VIN:        "1C4RJFAG5FC123456",
		BrandHint:  "jeep",
		Protocol:   "ISO 15765-4 CAN (11 bit, 500 kbaud)",
		Addressing: "11bit",
		Modules:    []byte(`[]`),
		CachedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := store.SaveVINCacheEntry(entry); err != nil {
		t.Fatalf("SaveVINCacheEntry: %v", err)
	}

	got, err := store.GetVINCacheEntry(entry.VIN)
	if err != nil {
		t.Fatalf("GetVINCacheEntry: %v", err)
	}
	if got.VIN != entry.VIN || got.BrandHint != entry.BrandHint {
		t.Errorf("got = %+v, want matching %+v", got, entry)
	}
}

func TestSQLiteStoreVINCacheMissing(t *testing.T) {
	store := newTestSQLiteStore(t)
	if _, err := store.GetVINCacheEntry("NOPE"); err == nil {
		t.Error("expected error for missing VIN")
	}
}

func TestSQLiteStoreListVINCacheEntries(t *testing.T) {
	store := newTestSQLiteStore(t)
	for _, vin := range []string{"VIN1", "VIN2"} {
		if err := store.SaveVINCacheEntry(&VINCacheEntry{VIN: vin, CachedAt: time.Now().UTC()}); err != nil {
			t.Fatalf("SaveVINCacheEntry: %v", err)
		}
	}
	entries, err := store.ListVINCacheEntries()
	if err != nil {
		t.Fatalf("ListVINCacheEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestSQLiteStoreDeleteVINCacheEntry(t *testing.T) {
	store := newTestSQLiteStore(t)
	if err := store.SaveVINCacheEntry(&VINCacheEntry{VIN: "VIN1", CachedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("SaveVINCacheEntry: %v", err)
	}
	if err := store.DeleteVINCacheEntry("VIN1"); err != nil {
		t.Fatalf("DeleteVINCacheEntry: %v", err)
	}
	if err := store.DeleteVINCacheEntry("VIN1"); err == nil {
		t.Error("expected error deleting an already-deleted VIN")
	}
}

func TestSQLiteStoreDiscoveryResults(t *testing.T) {
	store := newTestSQLiteStore(t)
	now := time.Now().UTC()
	rec := &DiscoveryRecord{Timestamp: now, Protocol: "CAN 11bit 500k", Addressing: "11bit", ModuleCount: 3, ElapsedMS: 1200}
	if err := store.SaveDiscoveryResultSQL("VIN1", rec); err != nil {
		t.Fatalf("SaveDiscoveryResultSQL: %v", err)
	}

	results, err := store.GetDiscoveryResultsSQL("VIN1", now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetDiscoveryResultsSQL: %v", err)
	}
	if len(results) != 1 || results[0].ModuleCount != 3 {
		t.Errorf("results = %+v", results)
	}
}

func TestSQLiteStoreDTCHistory(t *testing.T) {
	store := newTestSQLiteStore(t)
	now := time.Now().UTC()
	readout := &DTCReadout{Timestamp: now, Mode: "03", Codes: []string{"P0301"}, MILOn: true}
	if err := store.SaveDTCReadoutSQL("VIN1", readout, []byte(`["P0301"]`)); err != nil {
		t.Fatalf("SaveDTCReadoutSQL: %v", err)
	}

	readouts, rawCodes, err := store.GetDTCHistorySQL("VIN1", now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetDTCHistorySQL: %v", err)
	}
	if len(readouts) != 1 || !readouts[0].MILOn {
		t.Errorf("readouts = %+v", readouts)
	}
	if len(rawCodes) != 1 || string(rawCodes[0]) != `["P0301"]` {
		t.Errorf("rawCodes = %v", rawCodes)
	}
}
