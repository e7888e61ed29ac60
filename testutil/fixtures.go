package testutil

import (
	"fmt"
	"testing"
)

// Test credentials accepted by FakeIRIS
const (
	PublicKey  = "pub-0123456789"
	PrivateKey = "priv-9876543210"
)

// SessionJSON is a session as IRIS returns it, with a current project and
// image and fields the client does not model
const SessionJSON = `{
	"id": 7,
	"user": {"id": 3, "username": "jdoe"},
	"created": 1600000000000,
	"currentProject": {
		"id": 12,
		"cmID": 42,
		"class": "ProjectV2",
		"settings": {"annotationsPerPage": 20},
		"currentImage": {
			"id": 90,
			"cmID": 1001,
			"currentCmAnnotationID": 555,
			"labelingProgress": 30
		}
	}
}`

// BareSessionJSON is a session without current project
const BareSessionJSON = `{"id": 7, "user": {"id": 3, "username": "jdoe"}}`

// FreshSessionJSON is a session before any project was opened
const FreshSessionJSON = `{"id": "s1", "user": {"id": 3, "username": "jdoe"}, "currentProject": null}`

// NullImageSessionJSON is a session whose current project has no image yet
const NullImageSessionJSON = `{"id": 7, "currentProject": {"cmID": 42, "name": "P", "currentImage": null}}`

// NullAnnotationSessionJSON is a session with explicit nulls and empty
// values inside the current project and image
const NullAnnotationSessionJSON = `{
	"id": 8,
	"currentProject": {
		"cmID": 42,
		"class": "",
		"currentImage": {"cmID": 5, "currentCmAnnotationID": null}
	}
}`

// AnonymousSessionJSON is a session answer without an id
const AnonymousSessionJSON = `{"user": "u"}`

// ProjectJSON returns a project as returned by the touch and update endpoints
func ProjectJSON(cmID int) string {
	return fmt.Sprintf(`{"id": %d, "cmID": %d, "class": "ProjectV2", "name": "project %d"}`, cmID+1000, cmID, cmID)
}

// ImageJSON returns an image as returned by the touch endpoint
func ImageJSON(cmID int) string {
	return fmt.Sprintf(`{"id": %d, "cmID": %d, "originalFilename": "image-%d.tif"}`, cmID+1000, cmID, cmID)
}

// ProgressJSON is a labeling progress answer
const ProgressJSON = `{"labeledAnnotations": 3, "numberOfAnnotations": 12, "labelingProgress": 25}`

// WriteConfigFixture writes a config file pointing at apiRoot with a sqlite
// storage inside dir, and returns its path
func WriteConfigFixture(t *testing.T, dir, apiRoot string) string {
	t.Helper()
	cfg := fmt.Sprintf("apiRoot: %s\ntimeout: 5s\nstorage:\n  backend: sqlite\n  path: %s/storage.db\n", apiRoot, dir)
	return WriteFile(t, dir, "config.yaml", []byte(cfg))
}
