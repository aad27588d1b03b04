package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/anodyne74/obdcore/internal/datastore"
	"github.com/anodyne74/obdcore/internal/discovery"
)

// VINCache resolves and records a vehicle's known profile — brand hint,
// last-known protocol/addressing, discovered modules — so a reconnect can
// skip a full discovery sweep. Grounded on the original tool's flat-file
// VIN cache, backed here by the datastore's persisted store instead of a
// JSON file on disk.
type VINCache interface {
	Get(vin string) (*datastore.VINCacheEntry, bool)
	Set(vin string, brandHint, protocol, addressing string, modules []*discovery.Module) error
}

// StoreVINCache implements VINCache over a datastore.Store.
type StoreVINCache struct {
	Store datastore.Store
}

// NewStoreVINCache builds a VINCache backed by store.
func NewStoreVINCache(store datastore.Store) *StoreVINCache {
	return &StoreVINCache{Store: store}
}

func normalizeVIN(vin string) string {
	return strings.ToUpper(strings.TrimSpace(vin))
}

// Get looks up a previously-cached profile for vin.
func (c *StoreVINCache) Get(vin string) (*datastore.VINCacheEntry, bool) {
	if c.Store == nil || vin == "" {
		return nil, false
	}
	entry, err := c.Store.GetVINCacheEntry(normalizeVIN(vin))
	if err != nil {
		return nil, false
	}
	return entry, true
}

// Set records the profile learned for vin from a discovery run.
func (c *StoreVINCache) Set(vin string, brandHint, protocol, addressing string, modules []*discovery.Module) error {
	if c.Store == nil || vin == "" {
		return nil
	}
	modulesJSON, err := json.Marshal(modules)
	if err != nil {
		return err
	}
	return c.Store.SaveVINCacheEntry(&datastore.VINCacheEntry{
		VIN:        normalizeVIN(vin),
		BrandHint:  brandHint,
		Protocol:   protocol,
		Addressing: addressing,
		Modules:    modulesJSON,
		CachedAt:   time.Now().UTC(),
	})
}
