// Package dtc decodes OBD-II/UDS diagnostic trouble code bytes and looks
// up their human descriptions from a generic plus manufacturer-specific
// code database.
package dtc

import (
	"bufio"
	"embed"
	"encoding/csv"
	"strings"
)

//go:embed data/*.csv
var seedData embed.FS

// Info describes a single trouble code.
type Info struct {
	Code        string
	Description string
	Source      string
}

// manufacturerFiles maps a manufacturer keyword to its CSV file under data/.
var manufacturerFiles = map[string]string{
	"chrysler":   "dtc_jeep_dodge_chrysler.csv",
	"jeep":       "dtc_jeep_dodge_chrysler.csv",
	"dodge":      "dtc_jeep_dodge_chrysler.csv",
	"landrover":  "dtc_landrover.csv",
	"land_rover": "dtc_landrover.csv",
	"jaguar":     "dtc_landrover.csv",
}

// Database is a lookup table of known trouble codes, generic codes plus
// whichever manufacturer-specific set is loaded.
type Database struct {
	codes        map[string]Info
	manufacturer string
}

// NewDatabase builds a Database. An empty manufacturer loads generic codes
// plus every manufacturer file bundled; a specific one loads generic plus
// only that manufacturer's codes.
func NewDatabase(manufacturer string) *Database {
	db := &Database{codes: make(map[string]Info), manufacturer: manufacturer}
	db.load()
	return db
}

func (db *Database) load() {
	db.loadFile("data/dtc_generic.csv", "generic")

	if db.manufacturer != "" {
		mfr := strings.ToLower(db.manufacturer)
		if file, ok := manufacturerFiles[mfr]; ok {
			db.loadFile("data/"+file, mfr)
		}
		return
	}

	seen := make(map[string]bool)
	for mfr, file := range manufacturerFiles {
		if seen[file] {
			continue
		}
		seen[file] = true
		db.loadFile("data/"+file, mfr)
	}
}

func (db *Database) loadFile(path, source string) {
	f, err := seedData.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows, err := csv.NewReader(strings.NewReader(line)).ReadAll()
		if err != nil || len(rows) == 0 || len(rows[0]) < 2 {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(rows[0][0]))
		desc := strings.TrimSpace(rows[0][1])
		if code == "" {
			continue
		}
		db.codes[code] = Info{Code: code, Description: desc, Source: source}
	}
}

// SetManufacturer reloads the database scoped to manufacturer.
func (db *Database) SetManufacturer(manufacturer string) {
	db.manufacturer = manufacturer
	db.codes = make(map[string]Info)
	db.load()
}

// Lookup returns the Info for code, if known.
func (db *Database) Lookup(code string) (Info, bool) {
	info, ok := db.codes[strings.ToUpper(strings.TrimSpace(code))]
	return info, ok
}

// GetDescription returns code's description, or a fallback string.
func (db *Database) GetDescription(code string) string {
	if info, ok := db.Lookup(code); ok {
		return info.Description
	}
	return "Unknown code - not in database"
}

// Search finds codes whose code or description contains query (case
// insensitive).
func (db *Database) Search(query string) []Info {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Info
	for _, info := range db.codes {
		if strings.Contains(strings.ToLower(info.Description), q) || strings.Contains(strings.ToLower(info.Code), q) {
			out = append(out, info)
		}
	}
	return out
}

// Count returns the number of loaded codes.
func (db *Database) Count() int { return len(db.codes) }

// AvailableManufacturers lists manufacturer keywords with a bundled CSV.
func (db *Database) AvailableManufacturers() []string {
	seenFiles := make(map[string]bool)
	var out []string
	for mfr, file := range manufacturerFiles {
		if seenFiles[file] {
			continue
		}
		seenFiles[file] = true
		out = append(out, mfr)
	}
	return out
}
