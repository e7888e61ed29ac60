package internal

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned when no session is cached locally
	ErrNoSession = errors.New("no session cached")

	// ErrNoCurrentProject is returned when the cached session has no current project
	ErrNoCurrentProject = errors.New("session has no current project")

	// ErrNoCurrentImage is returned when the current project has no current image
	ErrNoCurrentImage = errors.New("current project has no current image")
)

// StorageError represents errors accessing the local storage backend
type StorageError struct {
	Backend string // "sqlite", "file", "memory"
	Op      string // "open", "get", "set", "remove", "update"
	Key     string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage error [%s] %s: %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("storage error [%s] %s %s: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors parsing stored or received data
type ParseError struct {
	Source string // "storage", "response"
	Key    string // storage key or request URL
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RequestError is a non-2xx answer of the IRIS server. Body and Status are
// what the server sent back.
type RequestError struct {
	Method string
	URL    string // credentials redacted
	Status int
	Body   []byte
}

func (e *RequestError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("request error: %s %s: %d: %s", e.Method, e.URL, e.Status, msg)
	}
	return fmt.Sprintf("request error: %s %s: %d", e.Method, e.URL, e.Status)
}

// Message extracts the server's error message from the body, if the body has
// one of the shapes IRIS uses ({"error":{"message":...}} or {"message":...}).
func (e *RequestError) Message() string {
	var withError struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &withError); err == nil && withError.Error.Message != "" {
		return withError.Error.Message
	}

	var plain struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &plain); err == nil && plain.Message != "" {
		return plain.Message
	}
	return ""
}

// IsRequestError reports whether err is a server rejection, returning it
func IsRequestError(err error) (*RequestError, bool) {
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}
