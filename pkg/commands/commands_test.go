package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PRICEMATRIX_CONFIG_PATH", dir)
	t.Setenv("PRICEMATRIX_PATH", dir)
	t.Setenv("PRICEMATRIX_BACKEND", "disk")
	t.Setenv("PRICEMATRIX_REMOTE", "")
	t.Setenv("PRICEMATRIX_LOG_LEVEL", "error")
	return dir
}

func TestCommandsRegistered(t *testing.T) {
	var got []string
	for _, c := range New().Commands() {
		got = append(got, c.Name())
	}
	sort.Strings(got)
	want := []string{"clear", "get", "init", "mcp", "serve", "set", "ui", "version"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
}

func TestInitSetGet(t *testing.T) {
	isolate(t)

	if _, err := run(t, "init", "--row", "basic,pro"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := run(t, "init", "--row", "basic"); err == nil {
		t.Fatal("second init without --force should fail")
	}
	out, err := run(t, "set", "basic", "lite", "5")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !strings.Contains(out, "15") {
		t.Errorf("set output missing derived unlimited price:\n%s", out)
	}

	out, err = run(t, "get", "--json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var got map[string]map[string]float64
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := map[string]map[string]float64{
		"basic": {"lite": 5, "standard": 10, "unlimited": 15},
		"pro":   {"lite": 0, "standard": 0, "unlimited": 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stored matrix (-want +got):\n%s", diff)
	}

	if _, err := run(t, "clear", "--yes"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out, err = run(t, "get", "--json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.Contains(out, "15") {
		t.Errorf("clear left prices behind:\n%s", out)
	}
}

func TestSetRejectsBadInput(t *testing.T) {
	isolate(t)

	if _, err := run(t, "init", "--row", "basic"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := run(t, "set", "basic", "lite", "1.2.3"); err == nil {
		t.Error("expected error for malformed value")
	}
	if _, err := run(t, "set", "basic", "gold", "1"); err == nil {
		t.Error("expected error for unknown tier")
	}
	if _, err := run(t, "set", "basic", "lite"); err == nil {
		t.Error("expected error for missing value")
	}
}

func TestGetMissingDocumentJSON(t *testing.T) {
	isolate(t)

	out, err := run(t, "get", "--json")
	if err != nil {
		t.Fatalf("get --json should report errors on stdout, got %v", err)
	}
	if !strings.Contains(out, `"type":"not_found"`) {
		t.Errorf("want a not_found error document, got %q", out)
	}
}

func TestListenURL(t *testing.T) {
	tests := map[string]struct {
		addr net.Addr
		host string
		tls  bool
		want string
	}{
		"loopback": {
			addr: &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 8090},
			host: "127.0.0.1",
			want: "http://127.0.0.1:8090/mcp",
		},
		"wildcard": {
			addr: &net.TCPAddr{IP: net.IPv4zero, Port: 9000},
			host: "0.0.0.0",
			want: "http://127.0.0.1:9000/mcp",
		},
		"ipv6": {
			addr: &net.TCPAddr{IP: net.ParseIP("::1"), Port: 9000},
			host: "::1",
			tls:  true,
			want: "https://[::1]:9000/mcp",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := listenURL(tc.addr, tc.host, "unused", "/mcp", tc.tls)
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "dev") {
		t.Errorf("version output = %q", out)
	}
}
