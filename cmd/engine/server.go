package main

import (
	"encoding/json"
	"net/http"

	"github.com/jayvdb/platform-engine/app"
	"github.com/jayvdb/platform-engine/dockerbackend"
	"github.com/jayvdb/platform-engine/lexicon"
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
)

// Server is the engine's single HTTP surface: it registers container
// specs and runs stories, reporting any execution failure through
// app.Handler exactly as spec'd.
type Server struct {
	Registry    *app.Registry
	Specs       *dockerbackend.ContainerSpecRegistry
	Interpreter *lexicon.Interpreter
	Failures    *app.Handler
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/run":
		s.handleRun(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/specs":
		s.handleRegisterSpec(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

type runRequest struct {
	AppID       string            `json:"app_id"`
	AppName     string            `json:"app_name"`
	AppVersion  string            `json:"app_version"`
	OwnerEmail  string            `json:"owner_email"`
	StoryName   string            `json:"story_name"`
	Tree        json.RawMessage   `json:"tree"`
	Environment map[string]string `json:"environment"`
	StartLine   string            `json:"start_line"`
}

// handleRun decodes a story, walks it from start_line, and answers
// with its terminal state. A failure during execution is reported to
// every registered agent and answered with the spec'd 500.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, ok := s.Registry.Get(req.AppID)
	if !ok {
		a = app.NewApp(req.AppName, req.AppVersion, req.OwnerEmail)
		if req.AppID != "" {
			a.ID = req.AppID
		}
		s.Registry.Register(a)
	}

	tree, err := story.DecodeTree(req.Tree)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid story tree: "+err.Error())
		return
	}

	st := story.New(a, req.StoryName, tree, req.Environment)
	start := st.Line(req.StartLine)
	if start == nil {
		writeError(w, http.StatusBadRequest, "unknown start_line")
		return
	}

	sentinel, err := s.Interpreter.RunBlock(r.Context(), st, start)
	if err != nil {
		s.Failures.HandleStoryError(r.Context(), w, a.ID, req.StoryName, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": sentinelStatus(sentinel)})
}

func sentinelStatus(s storyerr.Sentinel) string {
	switch {
	case s == nil:
		return "completed"
	case storyerr.IsBreak(s):
		return "break"
	default:
		if _, ok := storyerr.AsReturn(s); ok {
			return "returned"
		}
		return "suspended"
	}
}

type registerSpecRequest struct {
	Name  string            `json:"name"`
	Image string            `json:"image"`
	Cmd   []string          `json:"cmd"`
	Env   map[string]string `json:"env"`
	Ports []int             `json:"ports"`
}

func (s *Server) handleRegisterSpec(w http.ResponseWriter, r *http.Request) {
	var req registerSpecRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.Specs.Register(req.Name, dockerbackend.ContainerSpec{
		Image: req.Image,
		Cmd:   req.Cmd,
		Env:   req.Env,
		Ports: req.Ports,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
