package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/simulate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, points []model.MapPoint) (*simulate.Store, http.Handler) {
	t.Helper()
	store := newStore(t, 100)
	srv := NewServer("", store, points, nil)
	return store, srv.Handler()
}

func newStore(t *testing.T, capacity int) *simulate.Store {
	t.Helper()
	store, err := simulate.NewStore("", capacity)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("unmarshal %s: %v", path, err)
		}
	}
	return w.Code
}

func add(t *testing.T, s *simulate.Store, ip, typ string, risk float64, lat, lon float64) {
	t.Helper()
	_, err := s.Add(simulate.Incident{
		AlertRecord: model.AlertRecord{Timestamp: "2026-01-01 10:00:00", IP: ip, Country: "Germany", Type: typ, Risk: risk},
		Lat:         lat,
		Lon:         lon,
		Summary:     "summary",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, h := newTestServer(t, nil)

	var body map[string]interface{}
	if code := get(t, h, "/api/health", &body); code != http.StatusOK {
		t.Fatalf("health status = %d", code)
	}
	if body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	_, h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("health POST status = %d, want 405 or 404", w.Code)
	}
}

func TestAlertsEndpoint_NewestFirstCapped(t *testing.T) {
	store, h := newTestServer(t, nil)
	for range 25 {
		add(t, store, "1.2.3.4", "ddos", 80, 0, 0)
	}

	var alerts []model.AlertRecord
	if code := get(t, h, "/api/alerts", &alerts); code != http.StatusOK {
		t.Fatalf("alerts status = %d", code)
	}
	if len(alerts) != RecentAlertLimit {
		t.Fatalf("got %d alerts, want %d", len(alerts), RecentAlertLimit)
	}
	if alerts[0].ID != 25 || alerts[19].ID != 6 {
		t.Fatalf("ids = %d..%d, want 25..6", alerts[0].ID, alerts[19].ID)
	}
}

func TestAlertsEndpoint_EmptyIsArray(t *testing.T) {
	_, h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Body.String() != "[]" {
		t.Fatalf("empty alerts body = %q, want []", w.Body.String())
	}
}

func TestStatsEndpoint(t *testing.T) {
	store, h := newTestServer(t, nil)
	add(t, store, "1.1.1.1", "malware", 90, 0, 0)
	add(t, store, "1.1.1.1", "brute_force", 60, 0, 0)
	add(t, store, "1.1.1.1", "brute_force", 85, 0, 0)

	var stats model.StatsSnapshot
	if code := get(t, h, "/api/stats", &stats); code != http.StatusOK {
		t.Fatalf("stats status = %d", code)
	}
	if stats.Total != 3 || stats.Critical != 1 {
		t.Fatalf("stats = %+v, want total 3 critical 1", stats)
	}
	if stats.AttackTypes["brute_force"] != 2 || stats.AttackTypes["malware"] != 1 {
		t.Fatalf("attack types = %v", stats.AttackTypes)
	}
}

func TestMapPointsEndpoint(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		store, h := newTestServer(t, nil)
		add(t, store, "185.220.101.9", "ddos", 95, 52.5, 13.4)
		add(t, store, "10.0.0.5", "ddos", 95, 0, 0)

		var points []model.MapPoint
		get(t, h, "/api/map-points", &points)
		if len(points) != 1 || points[0].IP != "185.220.101.9" {
			t.Fatalf("points = %+v", points)
		}
	})
	t.Run("static", func(t *testing.T) {
		static := []model.MapPoint{{IP: "8.8.8.8", Lat: 1, Lon: 2, Risk: 3}}
		_, h := newTestServer(t, static)

		var points []model.MapPoint
		get(t, h, "/api/map-points", &points)
		if len(points) != 1 || points[0] != static[0] {
			t.Fatalf("points = %+v", points)
		}
	})
}

func TestIncidentEndpoint(t *testing.T) {
	store, h := newTestServer(t, nil)
	add(t, store, "1.2.3.4", "port_scan", 40, 0, 0)

	tests := []struct {
		path string
		code int
	}{
		{"/incident/1", http.StatusOK},
		{"/incident/2", http.StatusNotFound},
		{"/incident/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		var inc simulate.Incident
		if code := get(t, h, tt.path, &inc); code != tt.code {
			t.Errorf("GET %s = %d, want %d", tt.path, code, tt.code)
		}
		if tt.code == http.StatusOK && (inc.ID != 1 || inc.Summary != "summary" || inc.Status != "New") {
			t.Errorf("incident = %+v", inc)
		}
	}
}

func TestStartStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", newStore(t, 1), nil, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

type failingStore struct{ err error }

func (f failingStore) Recent(int) ([]model.AlertRecord, error) { return nil, f.err }
func (f failingStore) Stats() (model.StatsSnapshot, error)     { return model.StatsSnapshot{}, f.err }
func (f failingStore) Incident(int64) (simulate.Incident, bool, error) {
	return simulate.Incident{}, false, f.err
}
func (f failingStore) MapPoints() ([]model.MapPoint, error) { return nil, f.err }
func (f failingStore) Len() (int, error)                    { return 0, f.err }

func TestStoreFailureIsServerError(t *testing.T) {
	h := NewServer("", failingStore{err: errors.New("database is closed")}, nil, nil).Handler()

	for _, path := range []string{"/api/health", "/api/alerts", "/api/stats", "/api/map-points", "/incident/1"} {
		if code := get(t, h, path, nil); code != http.StatusInternalServerError {
			t.Errorf("GET %s = %d, want 500", path, code)
		}
	}
}
