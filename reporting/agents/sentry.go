package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jayvdb/platform-engine/reporting/agentkit"
)

// Sentry speaks Sentry's plain HTTP store endpoint directly --
// POST <dsn-host>/api/<project>/store/ with an X-Sentry-Auth header
// -- rather than pulling in a client SDK. It only publishes
// exceptions; events and messages are no-ops, matching the agent it
// is grounded on.
type Sentry struct {
	// StoreURL and AuthHeader are parsed once from the DSN at
	// construction, since a malformed DSN should disable the agent
	// rather than fail every publish call.
	StoreURL   string
	AuthHeader string
	Release    string
	HTTP       *http.Client
}

// NewSentry parses a Sentry DSN of the form
// "https://<key>:<secret>@<host>/<project>" into the store endpoint
// and auth header Sentry's ingest API expects. An unparsable or empty
// dsn yields a Sentry agent whose StoreURL is empty, so every publish
// call becomes a no-op -- mirroring the source's "dsn is None" guard.
func NewSentry(dsn, release string) *Sentry {
	s := &Sentry{Release: release}
	if dsn == "" {
		return s
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return s
	}
	key := u.User.Username()
	secret, _ := u.User.Password()
	project := strings.Trim(u.Path, "/")
	if key == "" || project == "" {
		return s
	}

	s.StoreURL = fmt.Sprintf("%s://%s/api/%s/store/", u.Scheme, u.Host, project)
	auth := fmt.Sprintf("Sentry sentry_version=7, sentry_key=%s, sentry_client=platform-engine/1.0", key)
	if secret != "" {
		auth += fmt.Sprintf(", sentry_secret=%s", secret)
	}
	s.AuthHeader = auth
	return s
}

func (s *Sentry) PublishMessage(ctx context.Context, message string, agentConfig map[string]string) error {
	return nil
}

func (s *Sentry) PublishEvent(ctx context.Context, name string, data agentkit.EventData, agentConfig map[string]string) error {
	return nil
}

// sentryEnvelope is the minimal subset of Sentry's store API payload
// needed to carry a formatted message plus user/tag context -- there
// is no persistent client-side context to clear before or after, so
// the source's context.clear() bracketing collapses to simply not
// retaining state between calls.
type sentryEnvelope struct {
	Message string            `json:"message"`
	Release string            `json:"release"`
	Tags    map[string]string `json:"tags"`
	Extra   map[string]string `json:"extra"`
}

func (s *Sentry) PublishException(ctx context.Context, err error, stack string, data agentkit.EventData, agentConfig map[string]string) error {
	if s.StoreURL == "" {
		return nil
	}

	fullStacktrace := true
	suppressStacktrace := false
	if agentConfig != nil {
		if v, ok := agentConfig["full_stacktrace"]; ok && v == "false" {
			fullStacktrace = false
		}
		if v, ok := agentConfig["suppress_stacktrace"]; ok && v == "true" {
			suppressStacktrace = true
		}
	}

	errStr := agentkit.FormatTraceback(err, stack, fullStacktrace, suppressStacktrace)

	envelope := sentryEnvelope{
		Message: errStr,
		Release: s.Release,
		Tags: map[string]string{
			"app_uuid":    data.AppUUID,
			"app_name":    data.AppName,
			"app_version": data.AppVersion,
			"story_name":  data.StoryName,
			"story_line":  data.StoryLine,
		},
		Extra: map[string]string{
			"platform_release": s.Release,
			"captured_at":      time.Now().UTC().Format(time.RFC3339),
		},
	}

	body, merr := json.Marshal(envelope)
	if merr != nil {
		return merr
	}

	return agentkit.FetchWithRetry(ctx, s.HTTP, 3, http.MethodPost, s.StoreURL, body, map[string]string{
		"Content-Type":  "application/json",
		"X-Sentry-Auth": s.AuthHeader,
	})
}
