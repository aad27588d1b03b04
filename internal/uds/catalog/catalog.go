// Package catalog loads brand-scoped UDS DID/routine/module definitions
// from bundled JSON, the way the original tool keeps vendor-reverse-engineered
// identifiers data instead of code.
package catalog

import (
	"embed"
	"encoding/json"
	"strings"
)

//go:embed data/*.json
var seedData embed.FS

// DID describes a single Data Identifier known for a brand.
type DID struct {
	DID     string `json:"did"`
	Name    string `json:"name"`
	Decoder string `json:"decoder"`
}

// Routine describes a brand-specific Routine Control identifier.
type Routine struct {
	Name      string `json:"name"`
	RoutineID string `json:"routine_id"`
}

// Module describes a discoverable ECU's addressing and confirmation status.
type Module struct {
	Name   string `json:"name"`
	TxID   string `json:"tx_id"`
	RxID   string `json:"rx_id"`
	Status string `json:"status"`
}

// didFiles/routineFiles/moduleFiles map a brand key to its catalog filenames.
var didFiles = map[string]string{"jeep": "jeep_dids.json", "land_rover": "land_rover_dids.json"}
var routineFiles = map[string]string{"jeep": "jeep_routines.json", "land_rover": "land_rover_routines.json"}
var moduleFiles = map[string]string{"jeep": "jeep_modules.json", "land_rover": "land_rover_modules.json"}

// StandardModules are generic diagnostic addresses common across many ECUs,
// used when no brand-specific catalog matches.
var StandardModules = []Module{
	{Name: "generic_engine", TxID: "7E0", RxID: "7E8", Status: "standard"},
	{Name: "generic_transmission", TxID: "7E1", RxID: "7E9", Status: "standard"},
}

func loadJSON[T any](filename string) []T {
	var out []T
	if filename == "" {
		return out
	}
	data, err := seedData.ReadFile("data/" + filename)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}

// LoadBrandDIDs returns every DID entry known for brand.
func LoadBrandDIDs(brand string) []DID {
	return loadJSON[DID](didFiles[strings.ToLower(brand)])
}

// LoadBrandRoutines returns every Routine entry known for brand.
func LoadBrandRoutines(brand string) []Routine {
	return loadJSON[Routine](routineFiles[strings.ToLower(brand)])
}

// LoadBrandModules returns every brand-specific Module candidate.
func LoadBrandModules(brand string) []Module {
	return loadJSON[Module](moduleFiles[strings.ToLower(brand)])
}

// FindDID looks up a DID entry by its 4 hex-digit code.
func FindDID(brand, did string) (DID, bool) {
	did = strings.ToUpper(did)
	for _, entry := range LoadBrandDIDs(brand) {
		if strings.EqualFold(entry.DID, did) {
			return entry, true
		}
	}
	return DID{}, false
}

// FindDIDByName looks up a DID entry by its logical name.
func FindDIDByName(brand, name string) (DID, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, entry := range LoadBrandDIDs(brand) {
		if strings.ToLower(entry.Name) == name {
			return entry, true
		}
	}
	return DID{}, false
}

// FindRoutine looks up a Routine entry by its logical name.
func FindRoutine(brand, name string) (Routine, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, entry := range LoadBrandRoutines(brand) {
		if strings.ToLower(entry.Name) == name {
			return entry, true
		}
	}
	return Routine{}, false
}

// FindModule looks up a Module by logical name, checking StandardModules
// first and then brand == jeep/land_rover candidates.
func FindModule(brand, name string) (Module, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range StandardModules {
		if strings.ToLower(m.Name) == name {
			return m, true
		}
	}
	for _, m := range LoadBrandModules(brand) {
		if strings.ToLower(m.Name) == name {
			return m, true
		}
	}
	return Module{}, false
}
