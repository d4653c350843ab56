// Package alchemytest provides a deterministic in-process fake of the
// analysis service for tests and local development.
//
// The fake accepts the same wire format as the real service, checks the
// apikey and outputMode parameters, records every call, and answers with
// small documents shaped like the real ones. Tests can pin the reply for a
// path with Respond or RespondRaw.
package alchemytest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/rhuss/alchemy/pkg/alchemy"
	"github.com/rhuss/alchemy/pkg/debug"
)

// PathPrefix is where the service endpoints are mounted.
const PathPrefix = "/calls"

// Call is a request as received by the fake.
type Call struct {
	Capability    alchemy.Capability
	Flavor        alchemy.Flavor
	Path          string // endpoint path without PathPrefix
	RawQuery      string
	Params        url.Values
	ContentLength int64
	ContentType   string
	Body          []byte // raw body of image uploads
}

type cannedReply struct {
	status int
	body   []byte
}

type route struct {
	capability alchemy.Capability
	flavor     alchemy.Flavor
}

// Service is an http.Handler emulating the analysis service.
type Service struct {
	apiKey string
	routes map[string]route

	mu     sync.Mutex
	calls  []Call
	canned map[string]cannedReply
}

// NewService creates a fake that accepts apiKey. An empty apiKey accepts any
// key of the right length.
func NewService(apiKey string) *Service {
	routes := make(map[string]route)
	for _, c := range alchemy.Capabilities() {
		for _, f := range alchemy.Flavors(c) {
			path, _ := alchemy.EndpointPath(c, f)
			routes[path] = route{capability: c, flavor: f}
		}
	}
	return &Service{
		apiKey: apiKey,
		routes: routes,
		canned: make(map[string]cannedReply),
	}
}

// NewServer starts an httptest.Server running a new Service. The base URL
// for alchemy.Config is server.URL + PathPrefix.
func NewServer(apiKey string) (*httptest.Server, *Service) {
	svc := NewService(apiKey)
	return httptest.NewServer(svc), svc
}

// Respond pins the JSON document returned for an endpoint path such as
// "/text/TextGetTextSentiment".
func (s *Service) Respond(path string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.RespondRaw(path, http.StatusOK, string(data))
	return nil
}

// RespondRaw pins the status code and raw body returned for an endpoint path.
func (s *Service) RespondRaw(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned[path] = cannedReply{status: status, body: []byte(body)}
}

// Calls returns a copy of the recorded calls in arrival order.
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Reset forgets recorded calls and pinned replies.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.canned = make(map[string]cannedReply)
}

// PathLabel maps a request to its endpoint path, or "other", for use as a
// bounded metrics label.
func (s *Service) PathLabel(r *http.Request) string {
	path := strings.TrimPrefix(r.URL.Path, PathPrefix)
	if _, ok := s.routes[path]; ok {
		return path
	}
	return "other"
}

// ServeHTTP implements http.Handler.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, PathPrefix+"/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, PathPrefix)
	rt, ok := s.routes[path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	call := Call{
		Capability:    rt.capability,
		Flavor:        rt.flavor,
		Path:          path,
		RawQuery:      r.URL.RawQuery,
		ContentLength: r.ContentLength,
		ContentType:   r.Header.Get("Content-Type"),
	}

	if rt.flavor == alchemy.FlavorImage {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		call.Body = body
		call.Params = r.URL.Query()
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form body", http.StatusBadRequest)
			return
		}
		call.Params = r.Form
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	canned, pinned := s.canned[path]
	s.mu.Unlock()

	debug.Log("mock", "call", "path", path, "params", len(call.Params), "bytes", len(call.Body))

	if pinned {
		debug.Trace("mock", "pinned reply", "path", path, "status", canned.status)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(canned.status)
		w.Write(canned.body)
		return
	}

	writeJSON(w, s.answer(call))
}

func writeJSON(w http.ResponseWriter, doc any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}
