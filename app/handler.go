package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"

	"github.com/jayvdb/platform-engine/reporting"
)

// storyExecutionFailedReason is the exact reason phrase the source
// sets via self.set_status(500, 'Story execution failed'). net/http's
// ResponseWriter.WriteHeader cannot carry a custom reason phrase, so
// finalizeStoryError hijacks the connection to write the status line
// verbatim when the underlying writer supports it, falling back to a
// bare 500 (Go's built-in "Internal Server Error" phrase) otherwise --
// e.g. under httptest.ResponseRecorder, which implements neither.
const storyExecutionFailedReason = "Story execution failed"

// Reporter is the subset of *reporting.Reporter the handler needs,
// kept narrow so tests can supply a fake.
type Reporter interface {
	CaptureException(ctx context.Context, err error, stack string, opts reporting.AgentOptions)
}

// Handler turns a failed story execution into an HTTP response and a
// Reporter capture, mirroring how a request-scoped story failure is
// reported and answered.
type Handler struct {
	Registry *Registry
	Reporter Reporter
}

// NewHandler returns a Handler backed by reg and rep.
func NewHandler(reg *Registry, rep Reporter) *Handler {
	return &Handler{Registry: reg, Reporter: rep}
}

// finishTracker wraps a ResponseWriter to remember whether a response
// has already been started, so HandleStoryError never writes twice to
// a request some other code already answered.
type finishTracker struct {
	http.ResponseWriter
	finished bool
}

func (f *finishTracker) WriteHeader(status int) {
	if f.finished {
		return
	}
	f.finished = true
	f.ResponseWriter.WriteHeader(status)
}

func (f *finishTracker) Write(b []byte) (int, error) {
	if !f.finished {
		f.finished = true
	}
	return f.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying ResponseWriter so net/http and
// http.ResponseController can still discover interfaces like
// http.Hijacker through the wrapper.
func (f *finishTracker) Unwrap() http.ResponseWriter { return f.ResponseWriter }

// Hijack implements http.Hijacker by delegating to the underlying
// writer, so a direct assertion against the wrapper still succeeds
// when the real connection supports it.
func (f *finishTracker) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := f.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
	}
	return hj.Hijack()
}

// Wrap returns a ResponseWriter that HandleStoryError can safely call
// even after other code in the request path has already responded.
func Wrap(w http.ResponseWriter) http.ResponseWriter {
	if ft, ok := w.(*finishTracker); ok {
		return ft
	}
	return &finishTracker{ResponseWriter: w}
}

// finalizeStoryError answers a request with status and the exact
// reason phrase the source reports, hijacking the raw connection to
// write it when possible. When the writer doesn't support hijacking,
// it falls back to the status code alone.
func finalizeStoryError(w http.ResponseWriter, status int, reason string) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		w.WriteHeader(status)
		return
	}

	conn, buf, err := hj.Hijack()
	if err != nil {
		w.WriteHeader(status)
		return
	}
	defer conn.Close()

	fmt.Fprintf(buf, "HTTP/1.1 %d %s\r\nContent-Length: 0\r\nConnection: close\r\n\r\n", status, reason)
	buf.Flush()
}

// HandleStoryError reports a story execution failure for appID/storyName
// to every registered agent, then answers the request with HTTP 500 and
// an empty body -- unless the response was already finished by the time
// this is called.
func (h *Handler) HandleStoryError(ctx context.Context, w http.ResponseWriter, appID, storyName string, execErr error) {
	ft := Wrap(w)

	appName, version, ownerEmail := "", "", ""
	if a, ok := h.Registry.Get(appID); ok {
		appName = a.Name
		version = a.Version
		ownerEmail = a.OwnerEmail
	}

	opts := reporting.NewAgentOptions()
	opts.StoryName = storyName
	opts.AppUUID = appID
	opts.AppName = appName
	opts.AppVersion = version
	opts.AllowUserEvents = true
	opts.AgentConfig = map[string]string{
		"clever_ident": ownerEmail,
		"clever_event": "App Request Failure",
	}

	h.Reporter.CaptureException(ctx, execErr, string(debug.Stack()), opts)

	tracker, ok := ft.(*finishTracker)
	if ok && tracker.finished {
		return
	}
	finalizeStoryError(ft, http.StatusInternalServerError, storyExecutionFailedReason)
	if ok {
		tracker.finished = true
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a {"error": msg} JSON body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
