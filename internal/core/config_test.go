package core

import "testing"

func TestParseSystemConfig(t *testing.T) {
	body := `{
		"carStatuses": [
			{"id": 1, "name": "Entrada", "color": "blue", "tabColor": "tab-blue"},
			{"id": 2, "name": "Pendiente"},
			{"id": "three", "name": "Broken"},
			{"id": 4, "name": "Rechazado", "extra": true}
		],
		"companyName": "Taller"
	}`

	cfg, err := ParseSystemConfig([]byte(body))
	if err != nil {
		t.Fatalf("ParseSystemConfig: %v", err)
	}
	if got := len(cfg.CarStatuses); got != 3 {
		t.Fatalf("len(CarStatuses) = %d, want 3", got)
	}
	if cfg.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", cfg.Dropped)
	}
	if cfg.CarStatuses[0].TabColor != "tab-blue" {
		t.Errorf("TabColor = %q, want tab-blue", cfg.CarStatuses[0].TabColor)
	}
	if cfg.CarStatuses[1].Color != "" {
		t.Errorf("missing color decoded as %q", cfg.CarStatuses[1].Color)
	}
	if len(cfg.ServiceRequestStatuses) != 0 {
		t.Errorf("ServiceRequestStatuses = %v, want empty", cfg.ServiceRequestStatuses)
	}
}

func TestParseSystemConfig_MissingList(t *testing.T) {
	cfg, err := ParseSystemConfig([]byte(`{}`))
	if err != nil {
		t.Fatalf("ParseSystemConfig: %v", err)
	}
	if len(cfg.CarStatuses) != 0 {
		t.Errorf("CarStatuses = %v, want empty", cfg.CarStatuses)
	}
}

func TestParseSystemConfig_NotAnObject(t *testing.T) {
	for _, body := range []string{`not json`, `[1,2,3]`, `{"carStatuses": 5}`} {
		if _, err := ParseSystemConfig([]byte(body)); err == nil {
			t.Errorf("ParseSystemConfig(%q) expected error", body)
		}
	}
}

func TestParseSystemConfig_ServiceRequests(t *testing.T) {
	body := `{"carStatuses": [], "serviceRequestStatuses": [{"id": 1, "code": "PENDING", "name": "Pendiente"}]}`
	cfg, err := ParseSystemConfig([]byte(body))
	if err != nil {
		t.Fatalf("ParseSystemConfig: %v", err)
	}
	if len(cfg.ServiceRequestStatuses) != 1 || cfg.ServiceRequestStatuses[0].Code != "PENDING" {
		t.Errorf("ServiceRequestStatuses = %+v", cfg.ServiceRequestStatuses)
	}
}

func TestDefaultSystemConfigCoversTables(t *testing.T) {
	engines := NewEngines()
	engines.Initialize(DefaultSystemConfig())
	for _, e := range engines.All() {
		if missing := e.MissingStatuses(); len(missing) != 0 {
			t.Errorf("%s: default catalog is missing %v", e.Name(), missing)
		}
	}
}
