package reporting_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jayvdb/platform-engine/reporting"
	"github.com/jayvdb/platform-engine/reporting/agents"
)

// Scenario 6: slack, sentry, and clevertap are all registered; an
// exception is captured with allow_user_events=true and a per-app
// Slack override in place. Slack is expected to be called twice (the
// global registration plus the app override), sentry and clevertap
// once each, and a failing sentry call must not prevent the others
// from being published.
func TestReporterFanOutIsolatesPerAgentFailures(t *testing.T) {
	var slackCalls, sentryCalls, cleverCalls int32

	slackSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&slackCalls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer slackSrv.Close()

	sentrySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&sentryCalls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer sentrySrv.Close()

	cleverSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cleverCalls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer cleverSrv.Close()

	appUUID := "app-123"

	r := reporting.New(reporting.Config{
		SlackWebhook:     slackSrv.URL,
		SentryDSN:        "http://key:secret@" + sentrySrv.Listener.Addr().String() + "/9",
		CleverTapAccount: "acct",
		CleverTapPass:    "pass",
		UserReporting:    true,
	}, "v-test")

	r.InitAppAgents(appUUID, reporting.AppAgentConfig{SlackWebhook: slackSrv.URL})

	// Point the registered CleverTap agent at the local test server.
	r.Agent("clevertap").(*agents.CleverTap).UploadURL = cleverSrv.URL

	// CleverTap only fires when agent_config carries clever_ident/event.
	opts := reporting.NewAgentOptions()
	opts.AppUUID = appUUID
	opts.StoryName = "story-1"
	opts.AgentConfig = map[string]string{
		"clever_ident": "user-1",
		"clever_event": "failure",
	}

	r.CaptureException(context.Background(), errors.New("boom"), "stack", opts)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&slackCalls) >= 2 &&
			atomic.LoadInt32(&sentryCalls) >= 1 &&
			atomic.LoadInt32(&cleverCalls) >= 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	// sentry's endpoint always answers 500, so agentkit.FetchWithRetry retries it
	// up to its configured attempt count -- the assertion here is "at
	// least once", not an exact count, since retries are expected.
	if got := atomic.LoadInt32(&slackCalls); got != 2 {
		t.Fatalf("expected slack to be called twice (global + app override), got %d", got)
	}
	if got := atomic.LoadInt32(&sentryCalls); got < 1 {
		t.Fatalf("expected sentry to be called at least once despite its own failure, got %d", got)
	}
	if got := atomic.LoadInt32(&cleverCalls); got != 1 {
		t.Fatalf("expected clevertap to be called once, got %d", got)
	}
}

func TestReporterCaptureEventRespectsEventsCapability(t *testing.T) {
	var sentryCalls int32
	sentrySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&sentryCalls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer sentrySrv.Close()

	r := reporting.New(reporting.Config{
		SentryDSN: "http://key:secret@" + sentrySrv.Listener.Addr().String() + "/1",
	}, "v-test")

	r.CaptureEvent(context.Background(), "something-happened", map[string]string{"k": "v"}, reporting.NewAgentOptions())

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&sentryCalls) != 0 {
		t.Fatalf("sentry does not support events, expected 0 calls, got %d", sentryCalls)
	}
}

func TestReporterSuppressAgentsSkipsTheNamedAgent(t *testing.T) {
	var slackCalls int32
	slackSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&slackCalls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer slackSrv.Close()

	r := reporting.New(reporting.Config{SlackWebhook: slackSrv.URL}, "v-test")

	opts := reporting.NewAgentOptions()
	opts.SuppressAgents = []string{"slack"}
	r.CaptureMessage(context.Background(), "hello", opts)

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&slackCalls) != 0 {
		t.Fatalf("expected slack to be suppressed, got %d calls", slackCalls)
	}
}

func TestReporterSuppressAgentsSkipsTheNamedAgentForExceptions(t *testing.T) {
	var slackCalls int32
	slackSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&slackCalls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer slackSrv.Close()

	r := reporting.New(reporting.Config{SlackWebhook: slackSrv.URL}, "v-test")

	opts := reporting.NewAgentOptions()
	opts.SuppressAgents = []string{"slack"}
	r.CaptureException(context.Background(), errors.New("boom"), "", opts)

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&slackCalls) != 0 {
		t.Fatalf("expected slack to be suppressed, got %d calls", slackCalls)
	}
}

func TestReporterNoRegisteredAgentsIsANoOp(t *testing.T) {
	r := reporting.New(reporting.Config{}, "v-test")
	r.CaptureException(context.Background(), errors.New("boom"), "", reporting.NewAgentOptions())
	r.CaptureEvent(context.Background(), "evt", nil, reporting.NewAgentOptions())
	r.CaptureMessage(context.Background(), "msg", reporting.NewAgentOptions())
	// No assertions: the test is that none of the above panics or blocks.
}
