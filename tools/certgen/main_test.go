package main

import (
	"bytes"
	"crypto/tls"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_CreatesCAAndServer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	var out bytes.Buffer

	if err := run(dir, []string{" localhost", "", "127.0.0.1 "}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"ca.crt", "ca.key", "server.crt", "server.key"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if _, err := tls.LoadX509KeyPair(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key")); err != nil {
		t.Errorf("server pair unusable: %v", err)
	}
	if !strings.Contains(out.String(), "localhost, 127.0.0.1") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRun_ReusesCA(t *testing.T) {
	dir := t.TempDir()
	if err := run(dir, []string{"localhost"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before, err := os.ReadFile(filepath.Join(dir, "ca.crt"))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(dir, []string{"localhost"}, &out); err != nil {
		t.Fatalf("second run: %v", err)
	}
	after, err := os.ReadFile(filepath.Join(dir, "ca.crt"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("CA was regenerated")
	}
	if !strings.Contains(out.String(), "Reusing CA") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRun_NoHosts(t *testing.T) {
	if err := run(t.TempDir(), []string{" ", ""}, &bytes.Buffer{}); err == nil {
		t.Error("expected error without hosts")
	}
}
