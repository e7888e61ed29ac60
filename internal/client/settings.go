package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/iksnae/iris-session/internal"
)

// Page selects a slice of a listing. A nil *Page requests the server default.
type Page struct {
	Offset int
	Max    int
}

func (p *Page) query() url.Values {
	q := url.Values{}
	if p == nil {
		return q
	}
	// offset 0 is sent too: it is the first page, not "no offset"
	q.Set("offset", strconv.Itoa(p.Offset))
	if p.Max > 0 {
		q.Set("max", strconv.Itoa(p.Max))
	}
	return q
}

// AccessChange is the payload of an access settings change
type AccessChange struct {
	SettingsID internal.ID `json:"settingsID"`
	OldValue   bool        `json:"oldValue"`
	NewValue   bool        `json:"newValue"`
}

// Settings wraps the project settings and administration endpoints. It does
// not touch the session cache; results are returned as the server sent them.
type Settings struct {
	client *Client
}

// NewSettings creates a Settings client
func NewSettings(client *Client) *Settings {
	return &Settings{client: client}
}

// ProjectUsers lists the users of a project with their IRIS settings
func (s *Settings) ProjectUsers(ctx context.Context, projectID string, page *Page) (json.RawMessage, error) {
	internal.LogDebug("Getting project user list: %s", projectID)
	return s.call(ctx, http.MethodGet, ProjectUsersURL, Params{
		"projectID": projectID,
	}, page.query(), nil)
}

// UserImages lists all images of a project with the settings and progress of
// one user (unfiltered)
func (s *Settings) UserImages(ctx context.Context, projectID, userID string, page *Page) (json.RawMessage, error) {
	return s.call(ctx, http.MethodGet, UserImagesURL, Params{
		"projectID": projectID,
		"userID":    userID,
	}, page.query(), nil)
}

// SetImageAccess changes the access of a user to one image of a project
func (s *Settings) SetImageAccess(ctx context.Context, projectID, imageID, userID string, change AccessChange) (json.RawMessage, error) {
	internal.LogDebug("Posting image access change: project=%s image=%s user=%s new=%t", projectID, imageID, userID, change.NewValue)
	return s.call(ctx, http.MethodPost, ImageAccessChangeURL, Params{
		"projectID": projectID,
		"imageID":   imageID,
		"userID":    userID,
	}, nil, change)
}

// SetProjectAccess changes the access of a user to a project
func (s *Settings) SetProjectAccess(ctx context.Context, projectID, userID string, change AccessChange) (json.RawMessage, error) {
	internal.LogDebug("Posting project access change: project=%s user=%s new=%t", projectID, userID, change.NewValue)
	return s.call(ctx, http.MethodPost, ProjectAccessChangeURL, Params{
		"projectID": projectID,
		"userID":    userID,
	}, nil, change)
}

// SynchronizeProject asks the server to synchronize a user's project with
// Cytomine. imageIDs restricts the synchronization to those images; empty
// means all images.
func (s *Settings) SynchronizeProject(ctx context.Context, projectID, userID string, imageIDs []string) (json.RawMessage, error) {
	internal.LogDebug("Triggering project synchronization: project=%s user=%s images=%v", projectID, userID, imageIDs)
	query := url.Values{}
	if len(imageIDs) > 0 {
		query.Set("images", strings.Join(imageIDs, ","))
	}
	return s.call(ctx, http.MethodPost, ProjectSyncURL, Params{
		"projectID": projectID,
		"userID":    userID,
	}, query, nil)
}

func (s *Settings) call(ctx context.Context, method, template string, params Params, query url.Values, payload any) (json.RawMessage, error) {
	u, err := s.client.URL(template, params, query)
	if err != nil {
		return nil, err
	}

	body, err := s.client.Do(ctx, method, u, payload)
	if err != nil {
		return nil, err
	}

	if len(body) > 0 && !json.Valid(body) {
		return nil, &internal.ParseError{Source: "response", Key: Redact(u), Err: errors.New("response is not valid JSON")}
	}
	return json.RawMessage(body), nil
}
