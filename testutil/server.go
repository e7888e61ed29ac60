package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// Route names of FakeIRIS, used by Fail and Requests
const (
	RouteSession          = "session"
	RouteTouchProject     = "touchProject"
	RouteUpdateProject    = "updateProject"
	RouteTouchImage       = "touchImage"
	RouteProgress         = "progress"
	RouteProjectUsers     = "projectUsers"
	RouteUserImages       = "userImages"
	RouteImageAccess      = "imageAccess"
	RouteProjectAccess    = "projectAccess"
	RouteProjectSync      = "projectSync"
	fakeIRISRootPath      = "/iris"
	fakeIRISErrorTemplate = `{"error":{"message":%q}}`
)

// RecordedRequest is a request received by FakeIRIS
type RecordedRequest struct {
	Route     string
	Method    string
	Path      string
	Vars      map[string]string
	Query     url.Values
	Body      []byte
	RequestID string
}

// FakeIRIS is an in-process IRIS server. It checks the API keys, serves the
// configured records and records every request.
type FakeIRIS struct {
	Server *httptest.Server

	mu         sync.Mutex
	publicKey  string
	privateKey string
	session    string
	projects   map[string]string
	images     map[string]string
	progress   string
	fail       map[string]int
	before     func(route string)
	requests   []RecordedRequest
}

// NewFakeIRIS starts a FakeIRIS closed when the test ends. It serves
// SessionJSON until SetSession is called.
func NewFakeIRIS(t *testing.T) *FakeIRIS {
	t.Helper()
	f := &FakeIRIS{
		publicKey:  PublicKey,
		privateKey: PrivateKey,
		session:    SessionJSON,
		projects:   make(map[string]string),
		images:     make(map[string]string),
		progress:   ProgressJSON,
		fail:       make(map[string]int),
	}

	r := mux.NewRouter()
	api := r.PathPrefix(fakeIRISRootPath + "/api").Subrouter()
	api.Use(f.checkKeys)

	api.HandleFunc("/session.json", f.handle(RouteSession, f.getSession)).Methods("GET")
	api.HandleFunc("/session/{sessionID}/project/{projectID}/touch", f.handle(RouteTouchProject, f.touchProject)).Methods("POST")
	api.HandleFunc("/session/{sessionID}/project/{projectID}", f.handle(RouteUpdateProject, f.updateProject)).Methods("PUT")
	api.HandleFunc("/session/{sessionID}/project/{projectID}/image/{imageID}/touch", f.handle(RouteTouchImage, f.touchImage)).Methods("POST")
	api.HandleFunc("/session/{sessionID}/project/{projectID}/image/{imageID}/progress", f.handle(RouteProgress, f.getProgress)).Methods("GET")

	api.HandleFunc("/settings/{projectID}/users.json", f.handle(RouteProjectUsers, f.echo)).Methods("GET")
	api.HandleFunc("/settings/user/{userID}/project/{projectID}/images.json", f.handle(RouteUserImages, f.echo)).Methods("GET")
	api.HandleFunc("/settings/user/{userID}/project/{projectID}/image/{imageID}/access.json", f.handle(RouteImageAccess, f.echo)).Methods("POST")
	api.HandleFunc("/settings/user/{userID}/project/{projectID}/access.json", f.handle(RouteProjectAccess, f.echo)).Methods("POST")
	api.HandleFunc("/admin/project/{projectID}/user/{userID}/synchronize.json", f.handle(RouteProjectSync, f.echo)).Methods("POST")

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// APIRoot returns the api root to configure clients with
func (f *FakeIRIS) APIRoot() string {
	return f.Server.URL + fakeIRISRootPath
}

// SetKeys changes the key pair the server accepts
func (f *FakeIRIS) SetKeys(publicKey, privateKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publicKey, f.privateKey = publicKey, privateKey
}

// SetSession sets the session JSON served; "" makes the endpoint answer 404
func (f *FakeIRIS) SetSession(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = body
}

// SetProject sets the JSON returned when touching project cmID
func (f *FakeIRIS) SetProject(cmID, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[cmID] = body
}

// SetImage sets the JSON returned when touching image cmID
func (f *FakeIRIS) SetImage(cmID, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[cmID] = body
}

// SetProgress sets the labeling progress JSON served
func (f *FakeIRIS) SetProgress(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = body
}

// Fail makes route answer status with an IRIS error body. Status 0 restores
// normal behavior.
func (f *FakeIRIS) Fail(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.fail, route)
		return
	}
	f.fail[route] = status
}

// Before installs a hook run before each routed request is answered
func (f *FakeIRIS) Before(hook func(route string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.before = hook
}

// Requests returns the requests received so far
func (f *FakeIRIS) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastRequest returns the last request received on route
func (f *FakeIRIS) LastRequest(t *testing.T, route string) RecordedRequest {
	t.Helper()
	reqs := f.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Route == route {
			return reqs[i]
		}
	}
	t.Fatalf("no request received on %s", route)
	return RecordedRequest{}
}

func (f *FakeIRIS) checkKeys(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		pub, priv := f.publicKey, f.privateKey
		f.mu.Unlock()

		q := r.URL.Query()
		if q.Get("publicKey") != pub || q.Get("privateKey") != priv {
			writeError(w, http.StatusUnauthorized, "invalid API keys")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type fakeHandler func(w http.ResponseWriter, req RecordedRequest)

func (f *FakeIRIS) handle(route string, h fakeHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		req := RecordedRequest{
			Route:     route,
			Method:    r.Method,
			Path:      r.URL.Path,
			Vars:      mux.Vars(r),
			Query:     r.URL.Query(),
			Body:      body,
			RequestID: r.Header.Get("X-Request-ID"),
		}

		f.mu.Lock()
		f.requests = append(f.requests, req)
		status := f.fail[route]
		hook := f.before
		f.mu.Unlock()

		if hook != nil {
			hook(route)
		}
		if status != 0 {
			writeError(w, status, fmt.Sprintf("%s rejected", route))
			return
		}
		h(w, req)
	}
}

func (f *FakeIRIS) getSession(w http.ResponseWriter, req RecordedRequest) {
	f.mu.Lock()
	body := f.session
	f.mu.Unlock()
	if body == "" {
		writeError(w, http.StatusNotFound, "no session")
		return
	}
	writeJSON(w, body)
}

func (f *FakeIRIS) touchProject(w http.ResponseWriter, req RecordedRequest) {
	f.mu.Lock()
	body, ok := f.projects[req.Vars["projectID"]]
	f.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, body)
}

// updateProject answers with the project it received, marked as saved
func (f *FakeIRIS) updateProject(w http.ResponseWriter, req RecordedRequest) {
	var project map[string]any
	if err := json.Unmarshal(req.Body, &project); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project")
		return
	}
	project["saved"] = true
	b, _ := json.Marshal(project)
	writeJSON(w, string(b))
}

func (f *FakeIRIS) touchImage(w http.ResponseWriter, req RecordedRequest) {
	f.mu.Lock()
	body, ok := f.images[req.Vars["imageID"]]
	f.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	writeJSON(w, body)
}

func (f *FakeIRIS) getProgress(w http.ResponseWriter, req RecordedRequest) {
	f.mu.Lock()
	body := f.progress
	f.mu.Unlock()
	writeJSON(w, body)
}

// echo answers with what it received, for the settings endpoints
func (f *FakeIRIS) echo(w http.ResponseWriter, req RecordedRequest) {
	query := make(map[string]string)
	for k := range req.Query {
		if k != "publicKey" && k != "privateKey" {
			query[k] = req.Query.Get(k)
		}
	}
	resp := map[string]any{
		"route": req.Route,
		"vars":  req.Vars,
		"query": query,
	}
	if len(req.Body) > 0 {
		resp["body"] = json.RawMessage(req.Body)
	}
	b, _ := json.Marshal(resp)
	writeJSON(w, string(b))
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, fakeIRISErrorTemplate, message)
}
