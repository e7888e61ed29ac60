package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iksnae/iris-session/internal"
)

// Synchronizer keeps the locally cached session in line with the server.
//
// Each operation applies its result to the cache through
// internal.SessionStore.Update, so it only replaces the sub-record it owns
// and works on the latest stored session. Operations are not ordered against
// each other: when two of them change the same field concurrently, the one
// whose response is applied last wins.
//
// On a server rejection (*internal.RequestError) the sub-record owned by the
// operation is cleared from the cache. Transport failures and cancellation
// leave the cache untouched.
type Synchronizer struct {
	client   *Client
	sessions *internal.SessionStore
}

// NewSynchronizer creates a Synchronizer caching into sessions
func NewSynchronizer(client *Client, sessions *internal.SessionStore) *Synchronizer {
	return &Synchronizer{client: client, sessions: sessions}
}

// FetchSession retrieves the user's session and replaces the cached one with
// it, so that changes made from another client are picked up. If the server
// rejects the request the cached session is removed.
func (s *Synchronizer) FetchSession(ctx context.Context) (*internal.Session, error) {
	u, err := s.client.URL(SessionURL, nil, nil)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Do(ctx, http.MethodGet, u, nil)
	if err != nil {
		internal.LogDebug("Error retrieving session: %v", err)
		if _, ok := internal.IsRequestError(err); ok {
			if rerr := s.sessions.SetSession(nil); rerr != nil {
				internal.LogWarn("Failed to remove cached session: %v", rerr)
			}
		}
		return nil, err
	}

	session, err := decode[internal.Session](raw, u)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SetSession(session); err != nil {
		return nil, fmt.Errorf("failed to cache session: %w", err)
	}

	internal.LogDebug("Successfully retrieved session. ID=%s", session.ID)
	return session, nil
}

// TouchProject marks projectID as the active project of the session and caches
// the refreshed project as the current one.
func (s *Synchronizer) TouchProject(ctx context.Context, projectID string) (*internal.Project, error) {
	session, err := s.sessions.Session()
	if err != nil {
		return nil, err
	}

	u, err := s.client.URL(TouchProjectURL, Params{
		"sessionID": session.ID.String(),
		"projectID": projectID,
	}, nil)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Do(ctx, http.MethodPost, u, nil)
	if err != nil {
		internal.LogDebug("Touching project %s failed: %v", projectID, err)
		s.clearOnRejection(err, "current project", func(sess *internal.Session) error {
			sess.CurrentProject = nil
			return nil
		})
		return nil, err
	}

	return s.cacheProject(raw, u)
}

// UpdateProject sends the IRIS project to the server and caches the server's
// version of it as the current project.
func (s *Synchronizer) UpdateProject(ctx context.Context, project *internal.Project) (*internal.Project, error) {
	if project == nil || project.CmID.IsZero() {
		return nil, errors.New("project to update has no cmID")
	}

	session, err := s.sessions.Session()
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if project.Class != "" {
		query.Set("class", project.Class)
	}
	u, err := s.client.URL(UpdateProjectURL, Params{
		"sessionID": session.ID.String(),
		"projectID": project.CmID.String(),
	}, query)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Do(ctx, http.MethodPut, u, project)
	if err != nil {
		internal.LogDebug("Updating project %s failed: %v", project.CmID, err)
		s.clearOnRejection(err, "current project", func(sess *internal.Session) error {
			sess.CurrentProject = nil
			return nil
		})
		return nil, err
	}

	updated, err := s.cacheProject(raw, u)
	if err != nil {
		return nil, err
	}
	internal.LogDebug("Successfully updated current project")
	return updated, nil
}

// SetCurrentProject changes the current project. nil clears it locally
// without contacting the server; any other project goes through UpdateProject.
func (s *Synchronizer) SetCurrentProject(ctx context.Context, project *internal.Project) (*internal.Project, error) {
	if project == nil {
		return nil, s.sessions.SetCurrentProject(nil)
	}
	return s.UpdateProject(ctx, project)
}

// TouchImage marks imageID as the active image of the session and caches the
// refreshed image as the current image of the current project.
func (s *Synchronizer) TouchImage(ctx context.Context, projectID, imageID string) (*internal.Image, error) {
	session, err := s.sessions.Session()
	if err != nil {
		return nil, err
	}

	u, err := s.client.URL(TouchImageURL, Params{
		"sessionID": session.ID.String(),
		"projectID": projectID,
		"imageID":   imageID,
	}, nil)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Do(ctx, http.MethodPost, u, nil)
	if err != nil {
		internal.LogDebug("Touching image %s failed: %v", imageID, err)
		s.clearOnRejection(err, "current image", func(sess *internal.Session) error {
			if sess.CurrentProject != nil {
				sess.CurrentProject.CurrentImage = nil
			}
			return nil
		})
		return nil, err
	}

	image, err := decode[internal.Image](raw, u)
	if err != nil {
		return nil, err
	}

	err = s.sessions.Update(func(sess *internal.Session) error {
		if sess.CurrentProject == nil {
			return internal.ErrNoCurrentProject
		}
		if sess.CurrentProject.CmID.String() != projectID {
			internal.LogWarn("Touched image of project %s, but current project is %s", projectID, sess.CurrentProject.CmID)
		}
		sess.CurrentProject.CurrentImage = image
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cache image: %w", err)
	}
	return image, nil
}

// LabelingProgress fetches the freshly computed labeling progress of an image.
// The cache is not touched.
func (s *Synchronizer) LabelingProgress(ctx context.Context, projectID, imageID string) (*internal.LabelingProgress, error) {
	session, err := s.sessions.Session()
	if err != nil {
		return nil, err
	}

	u, err := s.client.URL(LabelingProgressURL, Params{
		"sessionID": session.ID.String(),
		"projectID": projectID,
		"imageID":   imageID,
	}, nil)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Do(ctx, http.MethodGet, u, nil)
	if err != nil {
		internal.LogDebug("Fetching labeling progress failed: %v", err)
		return nil, err
	}
	return decode[internal.LabelingProgress](raw, u)
}

func (s *Synchronizer) cacheProject(raw []byte, u string) (*internal.Project, error) {
	project, err := decode[internal.Project](raw, u)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SetCurrentProject(project); err != nil {
		return nil, fmt.Errorf("failed to cache project: %w", err)
	}
	return project, nil
}

// clearOnRejection applies reset to the cached session when err is a server
// rejection. Failing to clear is logged, not returned: the caller reports err.
func (s *Synchronizer) clearOnRejection(err error, what string, reset func(*internal.Session) error) {
	if _, ok := internal.IsRequestError(err); !ok {
		return
	}
	if uerr := s.sessions.Update(reset); uerr != nil && !errors.Is(uerr, internal.ErrNoSession) {
		internal.LogWarn("Failed to clear %s: %v", what, uerr)
		return
	}
	internal.LogDebug("Cleared %s after rejection", what)
}

func decode[T any](raw []byte, u string) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, &internal.ParseError{Source: "response", Key: Redact(u), Err: err}
	}
	return v, nil
}
