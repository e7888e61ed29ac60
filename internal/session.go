package internal

import (
	"encoding/json"
	"fmt"
)

// SessionStore persists the IRIS session as one JSON item in local storage.
// The record is always replaced as a whole; partial updates go through Update,
// which is atomic on the underlying storage.
type SessionStore struct {
	storage Storage
}

// NewSessionStore creates a SessionStore on top of storage
func NewSessionStore(storage Storage) *SessionStore {
	return &SessionStore{storage: storage}
}

// Session returns the cached session. It returns ErrNoSession when nothing is
// cached and a *ParseError when the stored record is not valid JSON.
func (ss *SessionStore) Session() (*Session, error) {
	value, ok, err := ss.storage.GetItem(SessionItem)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoSession
	}
	return decodeSession(value)
}

// SetSession replaces the cached session. A nil session removes it.
func (ss *SessionStore) SetSession(session *Session) error {
	if session == nil {
		return ss.storage.RemoveItem(SessionItem)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return ss.storage.SetItem(SessionItem, string(data))
}

// Update loads the cached session, applies fn and stores the result, all as
// one atomic step. If fn returns an error nothing is written.
func (ss *SessionStore) Update(fn func(*Session) error) error {
	return ss.storage.UpdateItem(SessionItem, func(value string, ok bool) (string, bool, error) {
		if !ok {
			return "", false, ErrNoSession
		}
		session, err := decodeSession(value)
		if err != nil {
			return "", false, err
		}
		if err := fn(session); err != nil {
			return "", false, err
		}
		data, err := json.Marshal(session)
		if err != nil {
			return "", false, fmt.Errorf("failed to marshal session: %w", err)
		}
		return string(data), true, nil
	})
}

// CurrentProject returns the current project, or nil if none is set
func (ss *SessionStore) CurrentProject() (*Project, error) {
	session, err := ss.Session()
	if err != nil {
		return nil, err
	}
	if session.CurrentProject == nil {
		LogDebug("No local project available")
	}
	return session.CurrentProject, nil
}

// SetCurrentProject replaces the current project. nil clears it.
func (ss *SessionStore) SetCurrentProject(project *Project) error {
	return ss.Update(func(s *Session) error {
		s.CurrentProject = project
		return nil
	})
}

// CurrentImage returns the current image of the current project, or nil if
// none is set
func (ss *SessionStore) CurrentImage() (*Image, error) {
	project, err := ss.CurrentProject()
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNoCurrentProject
	}
	if project.CurrentImage == nil {
		LogDebug("Current image is not set")
	}
	return project.CurrentImage, nil
}

// SetCurrentImage replaces the current image of the current project. nil
// clears it.
func (ss *SessionStore) SetCurrentImage(image *Image) error {
	return ss.Update(func(s *Session) error {
		if s.CurrentProject == nil {
			return ErrNoCurrentProject
		}
		s.CurrentProject.CurrentImage = image
		return nil
	})
}

// CurrentAnnotationID returns the id of the current annotation, or nil when
// there is no current project, no current image or no annotation selected
func (ss *SessionStore) CurrentAnnotationID() (*ID, error) {
	project, err := ss.CurrentProject()
	if err != nil {
		return nil, err
	}
	if project == nil || project.CurrentImage == nil || project.CurrentImage.CurrentCmAnnotationID == nil {
		LogDebug("Current annotation is not set")
		return nil, nil
	}
	return project.CurrentImage.CurrentCmAnnotationID, nil
}

// SetCurrentAnnotationID sets the current annotation on the current image.
// nil clears it. It fails with ErrNoCurrentImage if no image is current.
func (ss *SessionStore) SetCurrentAnnotationID(annotationID *ID) error {
	return ss.Update(func(s *Session) error {
		if s.CurrentProject == nil {
			return ErrNoCurrentProject
		}
		if s.CurrentProject.CurrentImage == nil {
			return ErrNoCurrentImage
		}
		s.CurrentProject.CurrentImage.CurrentCmAnnotationID = annotationID
		return nil
	})
}

func decodeSession(value string) (*Session, error) {
	var session Session
	if err := json.Unmarshal([]byte(value), &session); err != nil {
		return nil, &ParseError{Source: "storage", Key: SessionItem, Err: err}
	}
	return &session, nil
}
