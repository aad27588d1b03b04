package catalog

import "testing"

func TestFindDID(t *testing.T) {
	entry, ok := FindDID("jeep", "F190")
	if !ok {
		t.Fatal("expected F190 to be found for jeep")
	}
	if entry.Name != "vin" {
		t.Errorf("Name = %q, want vin", entry.Name)
	}
	if entry.Decoder != "ascii" {
		t.Errorf("Decoder = %q, want ascii", entry.Decoder)
	}
}

func TestFindDIDCaseInsensitive(t *testing.T) {
	if _, ok := FindDID("jeep", "f190"); !ok {
		t.Error("expected lowercase DID lookup to succeed")
	}
}

func TestFindDIDUnknownBrand(t *testing.T) {
	if _, ok := FindDID("made_up_brand", "F190"); ok {
		t.Error("expected unknown brand to find nothing")
	}
}

func TestFindDIDByName(t *testing.T) {
	entry, ok := FindDIDByName("jeep", "VIN")
	if !ok {
		t.Fatal("expected case-insensitive name lookup to succeed")
	}
	if entry.DID != "F190" {
		t.Errorf("DID = %q, want F190", entry.DID)
	}
}

func TestFindRoutine(t *testing.T) {
	routine, ok := FindRoutine("jeep", "injector_balance_test")
	if !ok {
		t.Fatal("expected injector_balance_test routine to be found")
	}
	if routine.RoutineID != "0203" {
		t.Errorf("RoutineID = %q, want 0203", routine.RoutineID)
	}
}

func TestFindRoutineUnknown(t *testing.T) {
	if _, ok := FindRoutine("jeep", "not_a_routine"); ok {
		t.Error("expected unknown routine to find nothing")
	}
}

func TestFindModuleStandard(t *testing.T) {
	module, ok := FindModule("", "generic_engine")
	if !ok {
		t.Fatal("expected standard module to be found")
	}
	if module.TxID != "7E0" || module.RxID != "7E8" {
		t.Errorf("module = %+v", module)
	}
}

func TestFindModuleUnknown(t *testing.T) {
	if _, ok := FindModule("jeep", "not_a_module"); ok {
		t.Error("expected unknown module to find nothing")
	}
}

func TestLoadBrandDIDsEmptyBrand(t *testing.T) {
	if dids := LoadBrandDIDs("unknown"); len(dids) != 0 {
		t.Errorf("expected no DIDs for unknown brand, got %d", len(dids))
	}
}
