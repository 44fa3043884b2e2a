package main

import (
	"bytes"
	"flag"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utkarsh5026/threadpool/internal/config"
)

func newTestDemo(t *testing.T, out io.Writer) (*demo, *prometheus.Registry) {
	t.Helper()
	cfg := config.Default()
	cfg.Name = "test"
	cfg.Workers = 3
	cfg.Metrics.Enabled = true

	reg := prometheus.NewRegistry()
	return &demo{
		cfg:   cfg,
		log:   slog.New(slog.DiscardHandler),
		reg:   reg,
		out:   out,
		tasks: 50,
	}, reg
}

func TestWorkerSteps(t *testing.T) {
	tests := []struct {
		limit int
		want  []int
	}{
		{1, []int{1}},
		{2, []int{1, 2}},
		{4, []int{1, 2, 4}},
		{6, []int{1, 2, 4, 6}},
	}
	for _, tt := range tests {
		if got := workerSteps(tt.limit); !slices.Equal(got, tt.want) {
			t.Errorf("workerSteps(%d) = %v, want %v", tt.limit, got, tt.want)
		}
	}
}

func TestSelectScenarios(t *testing.T) {
	all, err := selectScenarios("all")
	if err != nil || len(all) != 3 {
		t.Errorf("expected all three scenarios, got %v (err=%v)", all, err)
	}

	one, err := selectScenarios("failure")
	if err != nil || !slices.Equal(one, []string{"failure"}) {
		t.Errorf("expected [failure], got %v (err=%v)", one, err)
	}

	if _, err := selectScenarios("chaos"); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestApplyFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	workers := fs.Int("workers", 0, "")
	addr := fs.String("metrics-addr", "", "")
	format := fs.String("log-format", "", "")
	level := fs.String("log-level", "", "")
	if err := fs.Parse([]string{"-workers", "7", "-metrics-addr", ":9999"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	applyFlags(cfg, fs, *workers, *addr, *format, *level)

	if cfg.Workers != 7 {
		t.Errorf("expected workers 7, got %d", cfg.Workers)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != ":9999" {
		t.Errorf("expected metrics on :9999, got %+v", cfg.Metrics)
	}
	// Unset flags leave the file values alone.
	if cfg.Log.Format != "text" || cfg.Log.Level != "info" {
		t.Errorf("log config was overwritten: %+v", cfg.Log)
	}
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "demo_sample_total", Help: "sample"})
	reg.MustRegister(counter)
	counter.Inc()

	srv := httptest.NewServer(newRouter(reg, "run-1"))
	defer srv.Close()

	t.Run("healthz", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK || string(body) != "ok" {
			t.Errorf("unexpected response: %d %q", resp.StatusCode, body)
		}
		if resp.Header.Get("X-Run-Id") != "run-1" {
			t.Errorf("expected run id header, got %q", resp.Header.Get("X-Run-Id"))
		}
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if !strings.Contains(string(body), "demo_sample_total 1") {
			t.Errorf("metrics output missing sample counter:\n%s", body)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/nope")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestRenderThroughput(t *testing.T) {
	var buf bytes.Buffer
	err := renderThroughput(&buf, []throughputResult{
		{Workers: 1, Tasks: 100, Elapsed: 100 * time.Millisecond},
		{Workers: 2, Tasks: 100, Elapsed: 50 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"WORKERS", "1.00x", "2.00x", "1000", "2000"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestScenarios(t *testing.T) {
	t.Run("squares", func(t *testing.T) {
		var buf bytes.Buffer
		d, _ := newTestDemo(t, &buf)
		if err := d.squares(); err != nil {
			t.Fatalf("squares failed: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "7*7 = 49") {
			t.Errorf("missing last square:\n%s", out)
		}
		if strings.Index(out, "2*2 = 4") > strings.Index(out, "3*3 = 9") {
			t.Errorf("results out of submission order:\n%s", out)
		}
	})

	t.Run("failure", func(t *testing.T) {
		var buf bytes.Buffer
		d, _ := newTestDemo(t, &buf)
		if err := d.failure(); err != nil {
			t.Fatalf("failure scenario failed: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"planned failure", "panicked", "hello pool"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("throughput", func(t *testing.T) {
		var buf bytes.Buffer
		d, reg := newTestDemo(t, &buf)
		if err := d.throughput(); err != nil {
			t.Fatalf("throughput failed: %v", err)
		}

		families, err := reg.Gather()
		if err != nil {
			t.Fatal(err)
		}
		pools := map[string]bool{}
		for _, mf := range families {
			for _, m := range mf.GetMetric() {
				for _, l := range m.GetLabel() {
					if l.GetName() == "pool" {
						pools[l.GetValue()] = true
					}
				}
			}
		}
		for _, name := range []string{"test-throughput-w1", "test-throughput-w2", "test-throughput-w3"} {
			if !pools[name] {
				t.Errorf("no metrics for pool %q (have %v)", name, pools)
			}
		}
	})
}

func TestStartMetricsServer(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	reg := prometheus.NewRegistry()

	t.Run("serves on the bound address", func(t *testing.T) {
		srv, err := startMetricsServer("127.0.0.1:0", newRouter(reg, "run-2"), log)
		if err != nil {
			t.Fatalf("failed to start server: %v", err)
		}
		defer srv.stop()

		resp, err := http.Get("http://" + srv.addr() + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("address in use", func(t *testing.T) {
		busy, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		defer busy.Close()

		srv, err := startMetricsServer(busy.Addr().String(), newRouter(reg, "run-3"), log)
		if err == nil {
			srv.stop()
			t.Fatal("expected an error for an address already in use")
		}

		// run surfaces the same failure instead of holding with no server.
		err = run([]string{"-scenario", "squares", "-no-progress", "-hold", "-metrics-addr", busy.Addr().String()})
		if err == nil || !strings.Contains(err.Error(), "metrics server") {
			t.Errorf("expected run to fail with a metrics server error, got %v", err)
		}
	})
}

func TestFailureScenarioReportsEveryOutcome(t *testing.T) {
	var buf bytes.Buffer
	d, _ := newTestDemo(t, &buf)
	if err := d.failure(); err != nil {
		t.Fatalf("failure scenario failed: %v", err)
	}

	lines := 0
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "task ") {
			lines++
		}
	}
	if lines != 3 {
		t.Errorf("expected one line per task, got %d:\n%s", lines, buf.String())
	}
}
