// Package agents implements the built-in agentkit.Agent backends.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jayvdb/platform-engine/reporting/agentkit"
)

// Slack posts formatted messages to an incoming webhook. The webhook
// can be overridden per call via agentConfig["webhook"] -- this is
// how a per-app Slack override (see Reporter.InitAppAgents) reaches
// the same agent instance the global configuration uses.
type Slack struct {
	Webhook string
	Release string
	HTTP    *http.Client
}

func NewSlack(webhook, release string) *Slack {
	return &Slack{Webhook: webhook, Release: release}
}

func (s *Slack) resolveWebhook(agentConfig map[string]string) (string, bool) {
	if agentConfig != nil {
		if wh, ok := agentConfig["webhook"]; ok {
			return wh, wh != ""
		}
	}
	return s.Webhook, s.Webhook != ""
}

func (s *Slack) post(ctx context.Context, webhook, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	return agentkit.FetchWithRetry(ctx, s.HTTP, 3, http.MethodPost, webhook, body,
		map[string]string{"Content-Type": "application/json"})
}

func (s *Slack) PublishMessage(ctx context.Context, message string, agentConfig map[string]string) error {
	if s.Webhook == "" && agentConfig == nil {
		return nil
	}
	webhook, ok := s.resolveWebhook(agentConfig)
	if !ok {
		return nil
	}
	return s.post(ctx, webhook, message)
}

func (s *Slack) PublishEvent(ctx context.Context, name string, data agentkit.EventData, agentConfig map[string]string) error {
	if s.Webhook == "" && agentConfig == nil {
		return nil
	}
	webhook, ok := s.resolveWebhook(agentConfig)
	if !ok {
		return nil
	}

	var evtStr string
	if len(data.Data) > 0 {
		j, err := json.Marshal(data.Data)
		if err != nil {
			return err
		}
		evtStr = fmt.Sprintf("\n\n```%s```", j)
	}

	msg := fmt.Sprintf("An event was triggered with the following information:\n\n"+
		"*Platform Engine Release*: %s\n%s*Event*: %s%s",
		s.Release, attributionLines(data), name, evtStr)

	return s.post(ctx, webhook, msg)
}

func (s *Slack) PublishException(ctx context.Context, err error, stack string, data agentkit.EventData, agentConfig map[string]string) error {
	if s.Webhook == "" && agentConfig == nil {
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

	var tracebackLine string
	if suppressStacktrace {
		tracebackLine = fmt.Sprintf("*Error*: %s", errStr)
	} else {
		tracebackLine = fmt.Sprintf("```%s```", errStr)
	}

	msg := fmt.Sprintf("An exception occurred with the following information:\n\n"+
		"*Platform Engine Release*: %s\n%s%s",
		s.Release, attributionLines(data), tracebackLine)

	webhook, ok := s.resolveWebhook(agentConfig)
	if !ok {
		return nil
	}
	return s.post(ctx, webhook, msg)
}

// attributionLines renders the app/story attribution present in data
// as Slack markdown lines, in the source's field order, omitting any
// field that is empty.
func attributionLines(data agentkit.EventData) string {
	var b strings.Builder
	if data.AppName != "" {
		fmt.Fprintf(&b, "*App Name*: %s\n", data.AppName)
	}
	if data.AppUUID != "" {
		fmt.Fprintf(&b, "*App UUID*: %s\n", data.AppUUID)
	}
	if data.AppVersion != "" {
		fmt.Fprintf(&b, "*App Version*: %s\n", data.AppVersion)
	}
	if data.StoryName != "" {
		fmt.Fprintf(&b, "*Story Name*: %s\n", data.StoryName)
	}
	if data.StoryLine != "" {
		fmt.Fprintf(&b, "*Story Line Number*: %s\n\n", data.StoryLine)
	}
	return b.String()
}
