package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pkt.systems/ahalaj/internal/kvstore"
	"pkt.systems/ahalaj/schema"
	"pkt.systems/pslog"
)

func testContext() context.Context {
	logger := pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})
	return pslog.ContextWithLogger(context.Background(), logger)
}

func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	stateDir := filepath.Join(dir, "state")
	path := filepath.Join(dir, "config.yaml")
	content := "config_version: 1\nstate_dir: " + stateDir + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, stateDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(testContext())
	return out.String(), err
}

func TestRootHasCommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"serve", "tui", "lists", "show", "add", "shuffle", "qr", "init-config", "version"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected root command to include %s", name)
		}
	}
}

func TestAddShowShuffleAcrossRuns(t *testing.T) {
	cfgPath, stateDir := writeTestConfig(t)

	if _, err := execute(t, "--config", cfgPath, "add", "Pizza"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := execute(t, "--config", cfgPath, "add", "Sushi"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := execute(t, "--config", cfgPath, "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "2. Pizza") || !strings.Contains(out, "3. Sushi") {
		t.Fatalf("unexpected show output %q", out)
	}
	out, err = execute(t, "--config", cfgPath, "shuffle")
	if err != nil {
		t.Fatalf("shuffle: %v", err)
	}
	if !strings.Contains(out, "Results:") {
		t.Fatalf("unexpected shuffle output %q", out)
	}
	if entries, err := os.ReadDir(stateDir); err != nil || len(entries) == 0 {
		t.Fatalf("expected lists to be stored in %s, err=%v", stateDir, err)
	}
}

func TestListFlagSelectsList(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	if _, err := execute(t, "--config", cfgPath, "show", "--list", "7"); err == nil {
		t.Fatalf("expected unknown list to fail")
	}
	out, err := execute(t, "--config", cfgPath, "lists")
	if err != nil {
		t.Fatalf("lists: %v", err)
	}
	if !strings.Contains(out, "* 1. ") {
		t.Fatalf("unexpected lists output %q", out)
	}
}

func TestEphemeralLeavesNoState(t *testing.T) {
	cfgPath, stateDir := writeTestConfig(t)
	if _, err := execute(t, "--config", cfgPath, "--ephemeral", "add", "Pizza"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := os.Stat(stateDir); !os.IsNotExist(err) {
		t.Fatalf("expected no state dir, got err=%v", err)
	}
}

func TestLoadConfigEphemeral(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	cfg, err := loadConfig(&rootOptions{configPath: cfgPath, ephemeral: true})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Storage.Backend != string(kvstore.BackendMemory) {
		t.Fatalf("expected memory backend, got %q", cfg.Storage.Backend)
	}
}

func TestQRPrintsListURL(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	out, err := execute(t, "--config", cfgPath, "--ephemeral", "qr")
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	first := strings.SplitN(out, "\n", 2)[0]
	if !strings.HasPrefix(first, "http://127.0.0.1:27490/form/") {
		t.Fatalf("unexpected url line %q", first)
	}
	if len(out) <= len(first)+1 {
		t.Fatalf("expected a QR code after the url")
	}
}

func TestInitConfigRespectsForce(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "nested", "config.yaml")
	if _, err := execute(t, "init-config", "-o", path); err != nil {
		t.Fatalf("init-config: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if _, err := execute(t, "init-config", "-o", path); err == nil {
		t.Fatalf("expected existing config to be kept")
	}
	if _, err := execute(t, "init-config", "-o", path, "--force"); err != nil {
		t.Fatalf("init-config --force: %v", err)
	}
}

func TestTUILogWriterDiscardsWithoutPath(t *testing.T) {
	w, closeFn, err := tuiLogWriter("")
	if err != nil || w != io.Discard {
		t.Fatalf("expected discard writer, got %v %v", w, err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	path := filepath.Join(t.TempDir(), "logs", "tui.log")
	w, closeFn, err = tuiLogWriter(path)
	if err != nil {
		t.Fatalf("tuiLogWriter: %v", err)
	}
	_, _ = io.WriteString(w, "line\n")
	_ = closeFn()
	if data, err := os.ReadFile(path); err != nil || string(data) != "line\n" {
		t.Fatalf("unexpected log file %q err=%v", data, err)
	}
}

func TestUnreadableStoreStopsCommandBeforeWriting(t *testing.T) {
	cfgPath, stateDir := writeTestConfig(t)
	if _, err := execute(t, "--config", cfgPath, "add", "Pizza"); err != nil {
		t.Fatalf("add: %v", err)
	}
	blob := filepath.Join(stateDir, "data.json")
	if err := os.WriteFile(blob, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("corrupt store: %v", err)
	}

	_, err := execute(t, "--config", cfgPath, "add", "Sushi")
	if !errors.Is(err, schema.ErrNoticesPending) || !strings.Contains(err.Error(), "error when getting the data") {
		t.Fatalf("expected the read failure to stop the command, got %v", err)
	}
	if data, err := os.ReadFile(blob); err != nil || string(data) != "{not json" {
		t.Fatalf("expected the stored blob to be untouched, got %q err=%v", data, err)
	}

	if _, err := execute(t, "--config", cfgPath, "add", "Sushi", "--acknowledge"); err != nil {
		t.Fatalf("add --acknowledge: %v", err)
	}
	data, err := os.ReadFile(blob)
	if err != nil || !strings.Contains(string(data), `"Sushi"`) || strings.Contains(string(data), "Pizza") {
		t.Fatalf("expected default lists plus the new item, got %q err=%v", data, err)
	}
	if backup, err := os.ReadFile(filepath.Join(stateDir, "data.corrupt.json")); err != nil || string(backup) != "{not json" {
		t.Fatalf("expected the unreadable blob to be backed up, got %q err=%v", backup, err)
	}
}
