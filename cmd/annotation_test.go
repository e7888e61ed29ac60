package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/iris-session/internal"
)

func TestAnnotationCommands(t *testing.T) {
	_, base := setupSession(t)

	out := mustExecute(t, base, "annotation", "show")
	if strings.TrimSpace(out) != "555" {
		t.Errorf("annotation show = %q, want 555", out)
	}

	mustExecute(t, base, "annotation", "set", "777")
	out = mustExecute(t, base, "annotation", "show")
	if strings.TrimSpace(out) != "777" {
		t.Errorf("annotation show after set = %q, want 777", out)
	}

	// the selection is sent with the next project update
	out = mustExecute(t, base, "project", "show")
	if !strings.Contains(out, `"currentCmAnnotationID": 777`) {
		t.Errorf("project show = %q", out)
	}

	mustExecute(t, base, "annotation", "clear")
	out = mustExecute(t, base, "annotation", "show")
	if !strings.Contains(out, "No current annotation") {
		t.Errorf("annotation show after clear = %q", out)
	}
}

func TestAnnotationSet_NoImage(t *testing.T) {
	_, base := setupSession(t)

	mustExecute(t, base, "image", "clear")
	if _, err := executeWith(t, base, "annotation", "set", "777"); !errors.Is(err, internal.ErrNoCurrentImage) {
		t.Errorf("annotation set error = %v, want ErrNoCurrentImage", err)
	}
}

func TestAnnotationShow_NoProject(t *testing.T) {
	_, base := setupSession(t)

	mustExecute(t, base, "project", "clear")
	out := mustExecute(t, base, "annotation", "show")
	if !strings.Contains(out, "No current annotation") {
		t.Errorf("annotation show = %q", out)
	}
}
