package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/projector"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newBackend(t *testing.T, setup func(r *gin.Engine)) *httptest.Server {
	t.Helper()
	r := gin.New()
	setup(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "ftp://host", "http://", "://x"} {
		if _, err := NewClient(bad); err == nil {
			t.Errorf("NewClient(%q) expected error", bad)
		}
	}

	c, err := NewClient("http://127.0.0.1:5000/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.BaseURL() != "http://127.0.0.1:5000" {
		t.Errorf("BaseURL = %q", c.BaseURL())
	}
}

func TestFetchAlerts(t *testing.T) {
	t.Parallel()

	srv := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/alerts", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", []byte(`[
				{"id": 2, "timestamp": "2025-01-01 10:00:01", "ip": "45.33.21.9", "type": "malware", "risk": 90, "country": "France"},
				{"id": 1, "timestamp": "2025-01-01 10:00:00", "ip": "10.0.0.5", "type": "port_scan", "risk": 40}
			]`))
		})
	})

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	records, err := c.FetchAlerts(context.Background())
	if err != nil {
		t.Fatalf("FetchAlerts: %v", err)
	}
	rows, dropped := projector.ProjectAlerts(records, 8)
	if len(rows) != 2 || dropped != 0 {
		t.Fatalf("rows/dropped = %d/%d", len(rows), dropped)
	}
	if rows[0].ID != 2 || rows[1].Country != projector.UnknownCountry {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestFetchStats(t *testing.T) {
	t.Parallel()

	srv := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"total":        12,
				"critical":     2,
				"attack_types": gin.H{"malware": 1, "normal": 11},
			})
		})
	})

	c, _ := NewClient(srv.URL)
	stats, err := c.FetchStats(context.Background())
	if err != nil {
		t.Fatalf("FetchStats: %v", err)
	}
	if got := projector.ProjectDistribution(stats); got != (model.Distribution{0, 0, 0, 1, 11}) {
		t.Errorf("distribution = %v", got)
	}
	if got := projector.ProjectTotals(stats); got.Total != 12 || got.Critical != 2 {
		t.Errorf("totals = %+v", got)
	}
}

func TestFetch_TransportFailures(t *testing.T) {
	t.Parallel()

	srv := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/alerts", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db down"})
		})
		r.GET("/api/stats", func(c *gin.Context) {
			c.String(http.StatusOK, "<html>maintenance</html>")
		})
	})

	c, _ := NewClient(srv.URL)
	if _, err := c.FetchAlerts(context.Background()); !errors.Is(err, model.ErrTransport) {
		t.Errorf("non-2xx err = %v, want ErrTransport", err)
	}
	if _, err := c.FetchStats(context.Background()); !errors.Is(err, model.ErrTransport) {
		t.Errorf("undecodable body err = %v, want ErrTransport", err)
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	c2, _ := NewClient(closed.URL)
	if _, err := c2.FetchAlerts(context.Background()); !errors.Is(err, model.ErrTransport) {
		t.Errorf("connection refused err = %v, want ErrTransport", err)
	}
}

func TestFetch_RespectsContextDeadline(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/alerts", func(c *gin.Context) {
			select {
			case <-release:
			case <-c.Request.Context().Done():
			}
			c.JSON(http.StatusOK, []any{})
		})
	})
	defer close(release)

	c, _ := NewClient(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.FetchAlerts(ctx)
	if !errors.Is(err, model.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("fetch took %v, deadline not honoured", elapsed)
	}
}

func TestProbe_RetriesUntilHealthy(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/health", func(c *gin.Context) {
			if calls.Add(1) < 3 {
				c.Status(http.StatusServiceUnavailable)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	})

	c, _ := NewClient(srv.URL)
	if err := c.Probe(context.Background(), 5); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("health calls = %d, want 3", got)
	}
}

func TestProbe_GivesUp(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/health", func(c *gin.Context) {
			calls.Add(1)
			c.Status(http.StatusServiceUnavailable)
		})
	})

	c, _ := NewClient(srv.URL)
	if err := c.Probe(context.Background(), 2); err == nil {
		t.Fatal("Probe should fail against an unhealthy backend")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("health calls = %d, want 2", got)
	}
}
