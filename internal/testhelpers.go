package internal

import "encoding/json"

// CreateTestSession creates a session with a current project, image and
// annotation, carrying a few server fields the client does not model
func CreateTestSession(id string) *Session {
	annotation := ID("555")
	return &Session{
		ID: ID(id),
		CurrentProject: &Project{
			CmID:  "42",
			Class: "ProjectV2",
			CurrentImage: &Image{
				CmID:                  "1001",
				CurrentCmAnnotationID: &annotation,
				Extra: map[string]json.RawMessage{
					"originalFilename": json.RawMessage(`"slide-1001.tif"`),
				},
			},
			Extra: map[string]json.RawMessage{
				"name": json.RawMessage(`"Test Project"`),
			},
		},
		Extra: map[string]json.RawMessage{
			"user": json.RawMessage(`{"id":3,"username":"jdoe"}`),
		},
	}
}

// CreateTestSessionWithProject creates a session whose current project has
// no current image
func CreateTestSessionWithProject(id string, projectID ID) *Session {
	return &Session{
		ID:             ID(id),
		CurrentProject: &Project{CmID: projectID},
	}
}
