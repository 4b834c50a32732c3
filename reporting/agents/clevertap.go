package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jayvdb/platform-engine/reporting/agentkit"
)

const cleverTapUploadURL = "https://api.clevertap.com/1/upload"

// CleverTap publishes events and exceptions through CleverTap's
// upload endpoint. It is a no-op unless agentConfig supplies both
// clever_ident and clever_event, since CleverTap events require a
// user identity and event name the agent has no default for.
type CleverTap struct {
	AccountID   string
	AccountPass string
	Release     string
	HTTP        *http.Client

	// UploadURL defaults to CleverTap's production upload endpoint;
	// overridable so tests can point it at a local server.
	UploadURL string
}

func NewCleverTap(accountID, accountPass, release string) *CleverTap {
	return &CleverTap{AccountID: accountID, AccountPass: accountPass, Release: release, UploadURL: cleverTapUploadURL}
}

func (c *CleverTap) PublishMessage(ctx context.Context, message string, agentConfig map[string]string) error {
	return nil
}

type cleverTapEvent struct {
	TS       int64             `json:"ts"`
	Identity string            `json:"identity"`
	EvtName  string            `json:"evtName"`
	EvtData  map[string]string `json:"evtData"`
	Type     string            `json:"type"`
}

func (c *CleverTap) upload(ctx context.Context, ident, evtName string, evtData map[string]string) error {
	body, err := json.Marshal(map[string]any{"d": []cleverTapEvent{{
		TS:       time.Now().Unix(),
		Identity: ident,
		EvtName:  evtName,
		EvtData:  evtData,
		Type:     "event",
	}}})
	if err != nil {
		return err
	}
	uploadURL := c.UploadURL
	if uploadURL == "" {
		uploadURL = cleverTapUploadURL
	}
	return agentkit.FetchWithRetry(ctx, c.HTTP, 3, http.MethodPost, uploadURL, body, map[string]string{
		"X-CleverTap-Account-Id": c.AccountID,
		"X-CleverTap-Passcode":   c.AccountPass,
		"Content-Type":           "application/json; charset=utf-8",
	})
}

func (c *CleverTap) PublishEvent(ctx context.Context, name string, data agentkit.EventData, agentConfig map[string]string) error {
	ident, evtName, ok := cleverTapIdentity(agentConfig)
	if !ok {
		return nil
	}

	evtData := map[string]string{}
	if data.AppName != "" {
		evtData["App name"] = data.AppName
	}
	if data.AppVersion != "" {
		evtData["App version"] = data.AppVersion
	}
	if data.StoryName != "" {
		evtData["Story name"] = data.StoryName
	}
	if data.StoryLine != "" {
		evtData["Story line"] = data.StoryLine
	}

	return c.upload(ctx, ident, evtName, evtData)
}

func (c *CleverTap) PublishException(ctx context.Context, err error, stack string, data agentkit.EventData, agentConfig map[string]string) error {
	ident, evtName, ok := cleverTapIdentity(agentConfig)
	if !ok {
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

	evtData := map[string]string{
		"Stacktrace": agentkit.FormatTraceback(err, stack, fullStacktrace, suppressStacktrace),
	}
	if data.AppName != "" {
		evtData["App name"] = data.AppName
	}
	if data.AppVersion != "" {
		evtData["App version"] = data.AppVersion
	}
	if data.StoryName != "" {
		evtData["Story name"] = data.StoryName
	}
	if data.StoryLine != "" {
		evtData["Story line"] = data.StoryLine
	}

	return c.upload(ctx, ident, evtName, evtData)
}

func cleverTapIdentity(agentConfig map[string]string) (ident, evtName string, ok bool) {
	if agentConfig == nil {
		return "", "", false
	}
	ident, identOK := agentConfig["clever_ident"]
	evtName, nameOK := agentConfig["clever_event"]
	return ident, evtName, identOK && nameOK
}
