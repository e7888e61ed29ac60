package internal

import (
	"encoding/json"
	"errors"
	"testing"
)

func newTestSessionStore(t *testing.T, session string) (*SessionStore, Storage) {
	t.Helper()
	storage := NewMemoryStorage()
	if session != "" {
		if err := storage.SetItem(SessionItem, session); err != nil {
			t.Fatal(err)
		}
	}
	return NewSessionStore(storage), storage
}

func idPtr(id string) *ID {
	v := ID(id)
	return &v
}

func TestSessionStore_Session(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		wantID    ID
		wantErrIs error
		wantParse bool
	}{
		{name: "absent", wantErrIs: ErrNoSession},
		{name: "valid", stored: `{"id": 7, "user": {"id": 3}}`, wantID: "7"},
		{name: "malformed", stored: `{"id": 7`, wantParse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss, _ := newTestSessionStore(t, tt.stored)
			session, err := ss.Session()

			switch {
			case tt.wantErrIs != nil:
				if !errors.Is(err, tt.wantErrIs) {
					t.Errorf("Session() error = %v, want %v", err, tt.wantErrIs)
				}
			case tt.wantParse:
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Errorf("Session() error = %v, want *ParseError", err)
				}
			default:
				if err != nil {
					t.Fatalf("Session() error = %v", err)
				}
				if session.ID != tt.wantID {
					t.Errorf("Session().ID = %q, want %q", session.ID, tt.wantID)
				}
			}
		})
	}
}

func TestSessionStore_SetSession(t *testing.T) {
	ss, storage := newTestSessionStore(t, "")

	session := &Session{ID: "7", Extra: map[string]json.RawMessage{"user": json.RawMessage(`{"id":3}`)}}
	if err := ss.SetSession(session); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}
	raw, ok, _ := storage.GetItem(SessionItem)
	if !ok || raw != `{"id":7,"user":{"id":3}}` {
		t.Errorf("stored session = %q", raw)
	}

	if err := ss.SetSession(nil); err != nil {
		t.Fatalf("SetSession(nil) error = %v", err)
	}
	if _, ok, _ := storage.GetItem(SessionItem); ok {
		t.Error("SetSession(nil) should remove the session item")
	}
}

func TestSessionStore_CurrentProject(t *testing.T) {
	ss, _ := newTestSessionStore(t, `{"id": 7}`)

	project, err := ss.CurrentProject()
	if err != nil || project != nil {
		t.Fatalf("CurrentProject() = %v, %v, want nil, nil", project, err)
	}

	if err := ss.SetCurrentProject(&Project{CmID: "42", Class: "ProjectV2"}); err != nil {
		t.Fatalf("SetCurrentProject() error = %v", err)
	}
	project, err = ss.CurrentProject()
	if err != nil || project == nil || project.CmID != "42" {
		t.Fatalf("CurrentProject() = %+v, %v", project, err)
	}

	if err := ss.SetCurrentProject(nil); err != nil {
		t.Fatalf("SetCurrentProject(nil) error = %v", err)
	}
	if project, _ := ss.CurrentProject(); project != nil {
		t.Errorf("CurrentProject() after clear = %+v", project)
	}

	// session fields survive project changes
	session, _ := ss.Session()
	if session.ID != "7" {
		t.Errorf("session id changed to %q", session.ID)
	}
}

func TestSessionStore_SetCurrentProjectWithoutSession(t *testing.T) {
	ss, _ := newTestSessionStore(t, "")
	if err := ss.SetCurrentProject(&Project{CmID: "42"}); !errors.Is(err, ErrNoSession) {
		t.Errorf("SetCurrentProject() error = %v, want ErrNoSession", err)
	}
}

func TestSessionStore_CurrentImage(t *testing.T) {
	ss, _ := newTestSessionStore(t, `{"id": 7}`)

	if _, err := ss.CurrentImage(); !errors.Is(err, ErrNoCurrentProject) {
		t.Errorf("CurrentImage() without project error = %v, want ErrNoCurrentProject", err)
	}
	if err := ss.SetCurrentImage(&Image{CmID: "1"}); !errors.Is(err, ErrNoCurrentProject) {
		t.Errorf("SetCurrentImage() without project error = %v, want ErrNoCurrentProject", err)
	}

	if err := ss.SetCurrentProject(&Project{CmID: "42"}); err != nil {
		t.Fatal(err)
	}
	image, err := ss.CurrentImage()
	if err != nil || image != nil {
		t.Fatalf("CurrentImage() = %v, %v, want nil, nil", image, err)
	}

	if err := ss.SetCurrentImage(&Image{CmID: "1001"}); err != nil {
		t.Fatalf("SetCurrentImage() error = %v", err)
	}
	image, err = ss.CurrentImage()
	if err != nil || image == nil || image.CmID != "1001" {
		t.Fatalf("CurrentImage() = %+v, %v", image, err)
	}

	project, _ := ss.CurrentProject()
	if project.CmID != "42" {
		t.Errorf("project changed by SetCurrentImage(): %+v", project)
	}
}

func TestSessionStore_CurrentAnnotationID(t *testing.T) {
	ss, _ := newTestSessionStore(t, `{"id": 7, "currentProject": {"cmID": 42}}`)

	if err := ss.SetCurrentAnnotationID(idPtr("555")); !errors.Is(err, ErrNoCurrentImage) {
		t.Errorf("SetCurrentAnnotationID() without image error = %v, want ErrNoCurrentImage", err)
	}

	if err := ss.SetCurrentImage(&Image{CmID: "1001"}); err != nil {
		t.Fatal(err)
	}
	id, err := ss.CurrentAnnotationID()
	if err != nil || id != nil {
		t.Fatalf("CurrentAnnotationID() = %v, %v, want nil, nil", id, err)
	}

	if err := ss.SetCurrentAnnotationID(idPtr("555")); err != nil {
		t.Fatalf("SetCurrentAnnotationID() error = %v", err)
	}
	id, err = ss.CurrentAnnotationID()
	if err != nil || id == nil || *id != "555" {
		t.Fatalf("CurrentAnnotationID() = %v, %v", id, err)
	}

	if err := ss.SetCurrentAnnotationID(nil); err != nil {
		t.Fatalf("SetCurrentAnnotationID(nil) error = %v", err)
	}
	if id, _ := ss.CurrentAnnotationID(); id != nil {
		t.Errorf("CurrentAnnotationID() after clear = %v", *id)
	}
}

func TestSessionStore_CurrentAnnotationIDWithoutProject(t *testing.T) {
	ss, _ := newTestSessionStore(t, `{"id": 7, "currentProject": null}`)

	id, err := ss.CurrentAnnotationID()
	if err != nil || id != nil {
		t.Errorf("CurrentAnnotationID() = %v, %v, want nil, nil", id, err)
	}
}

func TestSessionStore_UpdateErrorLeavesSession(t *testing.T) {
	const stored = `{"id":7,"currentProject":{"cmID":42}}`
	ss, storage := newTestSessionStore(t, stored)

	boom := errors.New("boom")
	err := ss.Update(func(s *Session) error {
		s.CurrentProject = nil
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}
	if raw, _, _ := storage.GetItem(SessionItem); raw != stored {
		t.Errorf("failed Update() changed the session to %s", raw)
	}
}

func TestSessionStore_MalformedSessionIsNotOverwritten(t *testing.T) {
	ss, storage := newTestSessionStore(t, `not json`)

	err := ss.SetCurrentProject(&Project{CmID: "42"})
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("SetCurrentProject() error = %v, want *ParseError", err)
	}
	if raw, _, _ := storage.GetItem(SessionItem); raw != "not json" {
		t.Errorf("malformed session overwritten with %s", raw)
	}
}
