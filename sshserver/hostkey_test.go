package sshserver

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureHostKeyCreatesThenReuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "ssh_host_key")
	first, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("EnsureHostKey: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
	second, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("EnsureHostKey reload: %v", err)
	}
	if !bytes.Equal(first.PublicKey().Marshal(), second.PublicKey().Marshal()) {
		t.Fatalf("expected the stored key to be reused")
	}
	if first.PublicKey().Type() != "ssh-ed25519" {
		t.Fatalf("unexpected key type %q", first.PublicKey().Type())
	}
}

func TestEnsureHostKeyRequiresPath(t *testing.T) {
	if _, err := EnsureHostKey(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
