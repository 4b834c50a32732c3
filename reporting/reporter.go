package reporting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matgreaves/run"

	"github.com/jayvdb/platform-engine/logctx"
	"github.com/jayvdb/platform-engine/reporting/agentkit"
	"github.com/jayvdb/platform-engine/reporting/agents"
)

// registeredAgent pairs an agentkit.Agent with the capability flags
// its kind carries -- Sentry, for instance, never wants generic
// events or messages, only exceptions.
type registeredAgent struct {
	id         string
	name       string
	agent      agentkit.Agent
	exceptions bool
	events     bool
	messages   bool
}

// AppAgentConfig is a per-app reporting override, currently limited to
// Slack -- the only agent the source allows story authors to redirect
// to their own destination.
type AppAgentConfig struct {
	SlackWebhook string
}

// Config is the subset of the engine's startup configuration the
// Reporter needs to register its built-in agents.
type Config struct {
	SlackWebhook            string
	SentryDSN               string
	CleverTapAccount        string
	CleverTapPass           string
	UserReporting           bool
	UserReportingStacktrace bool
}

// Reporter fans captured messages, events, and exceptions out to every
// registered agent, with per-app overrides layered on top for
// story-triggered captures. The Capture* methods are fire-and-forget:
// they return immediately, and agent failures are logged, never
// propagated.
type Reporter struct {
	config  Config
	release string

	agents    map[string]*registeredAgent
	appAgents map[string]AppAgentConfig
}

// New builds a Reporter and registers its built-in agents according to
// which pieces of cfg are present, mirroring Reporter.init's
// presence-gated registration.
func New(cfg Config, release string) *Reporter {
	r := &Reporter{
		config:    cfg,
		release:   release,
		agents:    map[string]*registeredAgent{},
		appAgents: map[string]AppAgentConfig{},
	}

	if cfg.SlackWebhook != "" {
		r.agents["slack"] = &registeredAgent{
			id: "slack", name: "Slack",
			agent:      agents.NewSlack(cfg.SlackWebhook, release),
			exceptions: true, events: true, messages: true,
		}
	}
	if cfg.SentryDSN != "" {
		r.agents["sentry"] = &registeredAgent{
			id: "sentry", name: "Sentry",
			agent:      agents.NewSentry(cfg.SentryDSN, release),
			exceptions: true, events: false, messages: false,
		}
	}
	if cfg.CleverTapAccount != "" && cfg.CleverTapPass != "" {
		r.agents["clevertap"] = &registeredAgent{
			id: "clevertap", name: "CleverTap",
			agent:      agents.NewCleverTap(cfg.CleverTapAccount, cfg.CleverTapPass, release),
			exceptions: true, events: true, messages: false,
		}
	}

	return r
}

// InitAppAgents registers a per-app reporting override. Calling it
// again for the same appUUID replaces the previous configuration.
func (r *Reporter) InitAppAgents(appUUID string, cfg AppAgentConfig) {
	r.appAgents[appUUID] = cfg
}

// AppAgents returns the override configuration for appUUID, and
// whether one was registered.
func (r *Reporter) AppAgents(appUUID string) (AppAgentConfig, bool) {
	cfg, ok := r.appAgents[appUUID]
	return cfg, ok
}

// Agent returns the registered agent for id ("slack", "sentry",
// "clevertap"), or nil if none is registered under that id.
func (r *Reporter) Agent(id string) agentkit.Agent {
	if ra, ok := r.agents[id]; ok {
		return ra.agent
	}
	return nil
}

func (r *Reporter) logger(ctx context.Context) *slog.Logger {
	return slog.New(slog.NewTextHandler(logctx.Writer(ctx), nil))
}

// buildEventData assembles the attribution payload shared by every
// capture call from opts, leaving fields opts doesn't set empty.
func (r *Reporter) buildEventData(opts AgentOptions) agentkit.EventData {
	return agentkit.EventData{
		PlatformRelease: r.release,
		StoryName:       opts.StoryName,
		StoryLine:       opts.StoryLine,
		AppName:         opts.AppName,
		AppUUID:         opts.AppUUID,
		AppVersion:      opts.AppVersion,
	}
}

// fanOut runs one run.Runner per registered agent concurrently via
// run.Group, detached from the caller. Every runner swallows its own
// error (logging it instead) before returning, so run.Group's
// first-error cancellation never triggers -- the fan-out is isolated
// per agent by construction, not by avoiding run.Group's own
// all-or-nothing semantics.
func (r *Reporter) fanOut(ctx context.Context, group run.Group) {
	go func() {
		if err := group.Run(ctx); err != nil {
			r.logger(ctx).Error("reporting fan-out failed", slog.String("err", err.Error()))
		}
	}()
}

func (r *Reporter) isolate(ctx context.Context, name string, publish func(context.Context) error) run.Runner {
	return run.Func(func(ctx context.Context) error {
		if err := publish(ctx); err != nil {
			r.logger(ctx).Error(fmt.Sprintf("unhandled %s reporting agent error", name), slog.String("err", err.Error()))
		}
		return nil
	})
}

// CaptureMessage fans message out to every registered agent whose
// messages capability is enabled and not suppressed for this call.
func (r *Reporter) CaptureMessage(ctx context.Context, message string, opts AgentOptions) {
	if len(r.agents) == 0 {
		return
	}
	group := run.Group{}
	for id, ra := range r.agents {
		if !ra.messages || opts.suppresses(id) {
			continue
		}
		ra := ra
		group[id] = r.isolate(ctx, ra.name, func(ctx context.Context) error {
			return ra.agent.PublishMessage(ctx, message, opts.AgentConfig)
		})
	}
	r.fanOut(ctx, group)
}

// CaptureEvent fans name/data out to every registered agent whose
// events capability is enabled, then, if user reporting is enabled
// top-level and opts allows it, additionally publishes to the app's
// Slack override (the only per-app destination the source supports).
func (r *Reporter) CaptureEvent(ctx context.Context, name string, data map[string]string, opts AgentOptions) {
	if len(r.agents) == 0 {
		return
	}

	evtData := r.buildEventData(opts)
	evtData.Data = data

	group := run.Group{}
	for id, ra := range r.agents {
		if !ra.events || opts.suppresses(id) {
			continue
		}
		ra := ra
		group[id] = r.isolate(ctx, ra.name, func(ctx context.Context) error {
			return ra.agent.PublishEvent(ctx, name, evtData, opts.AgentConfig)
		})
	}

	if r.config.UserReporting && opts.AllowUserEvents && opts.AppUUID != "" {
		if appCfg, ok := r.appAgents[opts.AppUUID]; ok && appCfg.SlackWebhook != "" {
			if slack := r.Agent("slack"); slack != nil {
				group["slack-app-override"] = r.isolate(ctx, "app Slack", func(ctx context.Context) error {
					return slack.PublishEvent(ctx, name, evtData, map[string]string{"webhook": appCfg.SlackWebhook})
				})
			}
		}
	}

	r.fanOut(ctx, group)
}

// CaptureException fans err out to every registered agent's exception
// capability, then applies the same per-app Slack override as
// CaptureEvent, with the stacktrace suppressed by default for
// user-facing reporting unless the engine's configuration opts in.
func (r *Reporter) CaptureException(ctx context.Context, err error, stack string, opts AgentOptions) {
	if len(r.agents) == 0 {
		return
	}

	excData := r.buildEventData(opts)

	group := run.Group{}
	for id, ra := range r.agents {
		if !ra.exceptions || opts.suppresses(id) {
			continue
		}
		ra := ra
		group[id] = r.isolate(ctx, ra.name, func(ctx context.Context) error {
			return ra.agent.PublishException(ctx, err, stack, excData, opts.AgentConfig)
		})
	}

	if r.config.UserReporting && opts.AllowUserEvents && opts.AppUUID != "" {
		if appCfg, ok := r.appAgents[opts.AppUUID]; ok && appCfg.SlackWebhook != "" {
			if slack := r.Agent("slack"); slack != nil {
				userCfg := map[string]string{"webhook": appCfg.SlackWebhook}
				if r.config.UserReportingStacktrace {
					userCfg["full_stacktrace"] = "true"
				} else {
					userCfg["full_stacktrace"] = "false"
					userCfg["suppress_stacktrace"] = "true"
				}
				group["slack-app-override"] = r.isolate(ctx, "app Slack", func(ctx context.Context) error {
					return slack.PublishException(ctx, err, stack, excData, userCfg)
				})
			}
		}
	}

	r.fanOut(ctx, group)
}
