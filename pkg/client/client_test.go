package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-lab/go/testingx"

	"github.com/hostprobe/hostprobe/internal/nodes"
	"github.com/hostprobe/hostprobe/pkg/checkhost/spec"
)

var testCatalog = nodes.Catalog{
	"de4.node.check-host.net": {Country: "Germany", City: "Frankfurt", Continent: "EU"},
	"us1.node.check-host.net": {Country: "USA", City: "Los Angeles", Continent: "NA"},
}

// fastConfig returns a Config with cadence values small enough for tests.
func fastConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		Catalog:        testCatalog,
		Timeout:        time.Second,
		SubmitAttempts: 3,
		SubmitBackoff:  time.Millisecond,
		PollInterval:   5 * time.Millisecond,
		PollCeiling:    25 * time.Millisecond,
		Emitter:        Quiet{},
	}
}

func TestNew(t *testing.T) {
	t.Run("new clients have the expected name and version", func(t *testing.T) {
		c := New("test", "v1.0.0", Config{})
		if c.ClientName != "test" || c.ClientVersion != "v1.0.0" {
			t.Errorf("client.New() returned client with wrong name/version")
		}
	})
	t.Run("trailing slash in base URL is trimmed", func(t *testing.T) {
		cfg := fastConfig("http://localhost:8080/")
		c := New("test", "v1.0.0", cfg)
		if c.config.BaseURL != "http://localhost:8080" {
			t.Errorf("BaseURL = %q, want trailing slash trimmed", c.config.BaseURL)
		}
	})
	t.Run("zero config values get protocol defaults", func(t *testing.T) {
		c := New("test", "v1.0.0", Config{})
		if c.config.BaseURL != spec.DefaultBaseURL {
			t.Errorf("BaseURL = %q, want %q", c.config.BaseURL, spec.DefaultBaseURL)
		}
		if c.config.PollInterval != spec.PollInterval ||
			c.config.PollCeiling != spec.PollCeiling ||
			c.config.SubmitAttempts != spec.SubmitAttempts {
			t.Errorf("cadence defaults not applied: %+v", c.config)
		}
	})
}

func TestClient_SetCatalog(t *testing.T) {
	c := New("test", "v1", fastConfig("http://localhost:8080"))

	refreshed := nodes.Catalog{
		"fr1.node.check-host.net": {Country: "France", City: "Paris", Continent: "EU"},
	}
	c.SetCatalog(refreshed)
	if _, ok := c.Catalog().Lookup("fr1.node.check-host.net"); !ok {
		t.Error("refreshed catalog not in use")
	}
	if _, ok := c.Catalog().Lookup("de4.node.check-host.net"); ok {
		t.Error("stale catalog entry still visible after refresh")
	}

	c.SetCatalog(nil)
	if c.Catalog() == nil {
		t.Error("nil catalog replaced the current one")
	}
}

func Test_makeUserAgent(t *testing.T) {
	got := makeUserAgent("clientname", "clientversion")
	expected := fmt.Sprintf("%s/%s %s/%s", "clientname", "clientversion",
		libraryName, libraryVersion)
	if got != expected {
		t.Errorf("makeUserAgent() = %s, want %s", got, expected)
	}
}

func TestClient_Submit(t *testing.T) {
	t.Run("sends target and node parameters", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/check-ping" {
				t.Errorf("path = %q, want /check-ping", r.URL.Path)
			}
			if got := r.URL.Query().Get("host"); got != "example.com" {
				t.Errorf("host = %q, want example.com", got)
			}
			if got := r.URL.Query()["node"]; len(got) != 2 {
				t.Errorf("node params = %v, want 2 entries", got)
			}
			fmt.Fprint(w, `{"ok": 1, "request_id": "abc123"}`)
		}))
		defer srv.Close()

		c := New("test", "v1", fastConfig(srv.URL))
		id, err := c.Submit(context.Background(), spec.KindPing, "example.com", nil)
		testingx.Must(t, err, "cannot submit check")
		if id != "abc123" {
			t.Errorf("id = %q, want abc123", id)
		}
	})

	t.Run("accepts a base URL with a trailing slash", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/check-ping" {
				t.Errorf("path = %q, want /check-ping", r.URL.Path)
			}
			fmt.Fprint(w, `{"ok": 1, "request_id": "abc123"}`)
		}))
		defer srv.Close()

		c := New("test", "v1", fastConfig(srv.URL+"/"))
		_, err := c.Submit(context.Background(), spec.KindPing, "example.com", nil)
		testingx.Must(t, err, "cannot submit check")
	})

	t.Run("retries exactly three times without a handle", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			fmt.Fprint(w, `{"ok": 0}`)
		}))
		defer srv.Close()

		c := New("test", "v1", fastConfig(srv.URL))
		_, err := c.Submit(context.Background(), spec.KindHTTP, "http://example.com", nil)
		if calls != 3 {
			t.Errorf("submission attempts = %d, want 3", calls)
		}
		var se *SubmissionError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *SubmissionError", err)
		}
		if !errors.Is(err, ErrNoRequestID) {
			t.Errorf("cause = %v, want ErrNoRequestID", se.Err)
		}
	})

	t.Run("retries on server errors", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := New("test", "v1", fastConfig(srv.URL))
		_, err := c.Submit(context.Background(), spec.KindTCP, "example.com:443", nil)
		if calls != 3 {
			t.Errorf("submission attempts = %d, want 3", calls)
		}
		var se *SubmissionError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *SubmissionError", err)
		}
	})

	t.Run("rejects unsupported kinds", func(t *testing.T) {
		c := New("test", "v1", fastConfig("http://127.0.0.1:1"))
		if _, err := c.Submit(context.Background(), spec.Kind("traceroute"), "x", nil); err == nil {
			t.Error("Submit accepted unsupported kind")
		}
	})
}

func TestClient_Await(t *testing.T) {
	t.Run("returns after the first poll when complete", func(t *testing.T) {
		var polls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/check-result/abc123" {
				t.Errorf("path = %q, want /check-result/abc123", r.URL.Path)
			}
			polls++
			fmt.Fprint(w, `{"de4.node.check-host.net": [[1, 0.032]], "us1.node.check-host.net": [[0, 0.1]]}`)
		}))
		defer srv.Close()

		c := New("test", "v1", fastConfig(srv.URL))
		raw, err := c.Await(context.Background(), "abc123")
		if err != nil {
			t.Fatalf("Await: %v", err)
		}
		if polls != 1 {
			t.Errorf("polls = %d, want 1", polls)
		}
		if len(raw) != 2 {
			t.Errorf("raw has %d nodes, want 2", len(raw))
		}
	})

	t.Run("times out while nodes never report", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"de4.node.check-host.net": null, "us1.node.check-host.net": null}`)
		}))
		defer srv.Close()

		c := New("test", "v1", fastConfig(srv.URL))
		_, err := c.Await(context.Background(), "abc123")
		var pe *PollTimeoutError
		if !errors.As(err, &pe) {
			t.Fatalf("error = %v, want *PollTimeoutError", err)
		}
		if !pe.Incomplete {
			t.Errorf("Incomplete = false, want true for nodes that never reported")
		}
	})

	t.Run("times out on persistent transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := New("test", "v1", fastConfig(srv.URL))
		_, err := c.Await(context.Background(), "abc123")
		var pe *PollTimeoutError
		if !errors.As(err, &pe) {
			t.Fatalf("error = %v, want *PollTimeoutError", err)
		}
		if pe.Incomplete {
			t.Error("Incomplete = true, want false for transport failure")
		}
		if pe.Err == nil {
			t.Error("Err = nil, want last transport cause")
		}
	})

	t.Run("keeps polling until the payload completes", func(t *testing.T) {
		var polls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			polls++
			if polls < 3 {
				fmt.Fprint(w, `{"de4.node.check-host.net": [[1, 0.032]], "us1.node.check-host.net": null}`)
				return
			}
			fmt.Fprint(w, `{"de4.node.check-host.net": [[1, 0.032]], "us1.node.check-host.net": [[1, 0.05]]}`)
		}))
		defer srv.Close()

		cfg := fastConfig(srv.URL)
		cfg.PollCeiling = time.Second
		c := New("test", "v1", cfg)
		raw, err := c.Await(context.Background(), "abc123")
		if err != nil {
			t.Fatalf("Await: %v", err)
		}
		if polls != 3 {
			t.Errorf("polls = %d, want 3", polls)
		}
		if !raw.Complete() {
			t.Error("returned payload is not complete")
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := New("test", "v1", fastConfig("http://127.0.0.1:1"))
		if _, err := c.Await(ctx, "abc123"); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestClient_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/check-tcp" {
			fmt.Fprint(w, `{"ok": 1, "request_id": "xyz"}`)
			return
		}
		fmt.Fprint(w, `{"de4.node.check-host.net": [[1, 0.032, "7.7.7.7"]], "us1.node.check-host.net": [[0, 0.2]], "unknown.node": [[1, 0.1]]}`)
	}))
	defer srv.Close()

	c := New("test", "v1", fastConfig(srv.URL))
	report, err := c.Check(context.Background(), spec.KindTCP, "example.com:22", nil)
	testingx.Must(t, err, "cannot run full check")
	if len(report) != 2 {
		t.Fatalf("report has %d locations, want 2 (unknown node dropped): %v",
			len(report), report.Locations())
	}
	de := report["Germany (Frankfurt)"]
	if !de.Success || de.TCP == nil || de.TCP.IP != "7.7.7.7" {
		t.Errorf("unexpected normalized result: %+v", de)
	}
	us := report["USA (Los Angeles)"]
	if us.Success {
		t.Errorf("expected failed result for us1, got %+v", us)
	}
}
