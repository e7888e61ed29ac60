package cmd

import (
	"strings"
	"testing"

	"github.com/iksnae/iris-session/testutil"
)

func TestKeysSet(t *testing.T) {
	f, base := setupIRIS(t)

	out := mustExecute(t, base, "keys", "set", testutil.PublicKey, testutil.PrivateKey)
	if !strings.Contains(out, "Keys saved") || !strings.Contains(out, "Session 7 cached") {
		t.Errorf("output = %q", out)
	}
	f.LastRequest(t, testutil.RouteSession)

	out = mustExecute(t, base, "session", "show")
	if !strings.Contains(out, `"id": 7`) {
		t.Errorf("session show = %q", out)
	}
}

func TestKeysSet_NoFetch(t *testing.T) {
	f, base := setupIRIS(t)

	mustExecute(t, base, "keys", "set", "--no-fetch", "a", "b")
	if len(f.Requests()) != 0 {
		t.Error("--no-fetch should not contact the server")
	}
}

func TestKeysSet_WrongKeys(t *testing.T) {
	_, base := setupIRIS(t)

	_, err := executeWith(t, base, "keys", "set", "wrong", "keys")
	if err == nil || !strings.Contains(err.Error(), "keys are incorrect") {
		t.Errorf("error = %v, want incorrect keys", err)
	}
}

func TestKeysSet_EmptyKey(t *testing.T) {
	_, base := setupIRIS(t)

	if _, err := executeWith(t, base, "keys", "set", " ", "b"); err == nil {
		t.Error("an empty public key should be refused")
	}
}

func TestKeysShowAndClear(t *testing.T) {
	_, base := setupSession(t)

	out := mustExecute(t, base, "keys", "show")
	if !strings.Contains(out, testutil.PublicKey) {
		t.Errorf("keys show should print the public key, got %q", out)
	}
	if strings.Contains(out, testutil.PrivateKey) {
		t.Errorf("keys show must mask the private key, got %q", out)
	}
	if !strings.Contains(out, testutil.PrivateKey[:4]+"****") {
		t.Errorf("keys show should keep the first characters of the private key, got %q", out)
	}

	mustExecute(t, base, "keys", "clear")

	out = mustExecute(t, base, "keys", "show")
	if strings.Contains(out, testutil.PublicKey) {
		t.Errorf("keys still present after clear: %q", out)
	}
	if _, err := executeWith(t, base, "session", "show"); err == nil {
		t.Error("session should be removed with the keys")
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcd", "****"},
		{"abcdefgh", "abcd****"},
	}
	for _, tt := range tests {
		if got := maskKey(tt.key); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
