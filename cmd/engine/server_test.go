package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jayvdb/platform-engine/app"
	"github.com/jayvdb/platform-engine/dockerbackend"
	"github.com/jayvdb/platform-engine/lexicon"
	"github.com/jayvdb/platform-engine/metrics"
	"github.com/jayvdb/platform-engine/reporting"
	"github.com/jayvdb/platform-engine/service"
	"github.com/jayvdb/platform-engine/storyerr"
)

func newTestServer() *Server {
	registry := app.NewRegistry()
	specs := dockerbackend.NewContainerSpecRegistry()
	backend := dockerbackend.NewBackend(specs)
	bridge := service.NewBridge(backend, metrics.NoopSink{})
	interp := lexicon.New(bridge)
	reporter := reporting.New(reporting.Config{}, "test")
	return &Server{
		Registry:    registry,
		Specs:       specs,
		Interpreter: interp,
		Failures:    app.NewHandler(registry, reporter),
	}
}

func TestHandleRunCompletesASimpleSetStory(t *testing.T) {
	srv := newTestServer()

	body := `{
		"app_name": "checkout",
		"app_version": "v1",
		"owner_email": "owner@example.com",
		"story_name": "checkout-story",
		"start_line": "1",
		"tree": {
			"1": {
				"method": "set",
				"name": ["x"],
				"args": [{"kind": "literal", "value": 4}]
			}
		}
	}`

	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "completed" {
		t.Errorf("status = %q, want completed", resp["status"])
	}
}

func TestHandleRunUnknownStartLineIsBadRequest(t *testing.T) {
	srv := newTestServer()

	body := `{"story_name": "s", "start_line": "99", "tree": {"1": {"method": "expression", "args": []}}}`
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleRunServiceExecutionFailureReturns500(t *testing.T) {
	srv := newTestServer()

	// "db" is never registered with Specs, so Execute fails with
	// ContainerSpecNotRegisteredError -- the server must report it and
	// answer 500, not panic or hang.
	body := `{
		"app_name": "checkout",
		"story_name": "checkout-story",
		"start_line": "1",
		"tree": {
			"1": {
				"method": "execute",
				"service": "db",
				"command": "query",
				"output": ["res"],
				"args": []
			}
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500, body = %s", w.Code, w.Body.String())
	}
}

func TestHandleRegisterSpecRecordsItForLookup(t *testing.T) {
	srv := newTestServer()

	specBody := `{"name": "echo", "image": "busybox", "cmd": ["echo"]}`
	req := httptest.NewRequest(http.MethodPost, "/specs", strings.NewReader(specBody))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("register spec status = %d", w.Code)
	}

	spec, err := srv.Specs.Lookup("echo", storyerr.Attribution{})
	if err != nil {
		t.Fatalf("expected echo to be registered, lookup failed: %v", err)
	}
	if spec.Image != "busybox" {
		t.Errorf("image = %q, want busybox", spec.Image)
	}
}
