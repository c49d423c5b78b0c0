package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/logging"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv(configPathEnv, "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Fatalf("run() error = %v, want a config loading error", err)
	}
}

func TestRun_MissingTelemetryURL(t *testing.T) {
	t.Setenv(configPathEnv, writeConfig(t, `
site:
  id: test-site
database:
  path: "`+filepath.Join(t.TempDir(), "test.db")+`"
mqtt:
  enabled: false
`))
	t.Setenv("EODCHART_TELEMETRY_URL", "")

	err := run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "telemetry.server_url") {
		t.Fatalf("run() error = %v, want telemetry.server_url validation error", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"default", "", defaultConfigPath},
		{"env override", "/custom/path/config.yaml", "/custom/path/config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(configPathEnv, tt.env)
			if got := getConfigPath(); got != tt.want {
				t.Errorf("getConfigPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestRun_StartupAndShutdown starts the core with MQTT and InfluxDB
// disabled, serves one chart configuration and shuts down on cancel.
func TestRun_StartupAndShutdown(t *testing.T) {
	telemetrySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"createddate":[0,900000,1800000],"temperature":[40,41,42],"electrical":{"usage":[1,2,4]}}`) //nolint:errcheck // test server
	}))
	defer telemetrySrv.Close()

	port := freePort(t)
	t.Setenv(configPathEnv, writeConfig(t, fmt.Sprintf(`
site:
  id: test-site
database:
  path: %q
mqtt:
  enabled: false
influxdb:
  enabled: false
api:
  host: "127.0.0.1"
  port: %d
logging:
  level: error
  format: text
  output: stdout
telemetry:
  server_url: %q
  ticks: 2
`, filepath.Join(t.TempDir(), "test.db"), port, telemetrySrv.URL)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/buildings/3/chart-config", port)
	var resp *http.Response
	var err error
	for range 50 {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("server never answered: %v", err)
	}
	body, _ := io.ReadAll(resp.Body) //nolint:errcheck // test read
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("chart-config status = %d, body = %s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}
}

type shutdownStep struct {
	mu    *sync.Mutex
	steps *[]string
	name  string
	gate  chan struct{}
}

func (s shutdownStep) record() {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	*s.steps = append(*s.steps, s.name)
	s.mu.Unlock()
}

func (s shutdownStep) Close() error { s.record(); return nil }
func (s shutdownStep) Wait()        { s.record() }

func TestStopMQTT_WaitsForWarmups(t *testing.T) {
	var mu sync.Mutex
	var steps []string
	gate := make(chan struct{})

	client := shutdownStep{mu: &mu, steps: &steps, name: "close"}
	warmer := shutdownStep{mu: &mu, steps: &steps, name: "wait", gate: gate}

	done := make(chan struct{})
	go func() {
		defer close(done)
		stopMQTT(client, warmer, logging.Discard())
	}()

	select {
	case <-done:
		t.Fatal("stopMQTT returned while a warm-up was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stopMQTT did not return after warm-ups finished")
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(steps, ",") != "close,wait" {
		t.Errorf("shutdown order = %v, want [close wait]", steps)
	}
}
