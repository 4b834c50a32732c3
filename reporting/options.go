// Package reporting fans application events, user messages, and
// unhandled errors out to a set of external reporting agents (Slack,
// Sentry, CleverTap), each independently enabled by configuration and
// independently isolated from the others' failures.
package reporting

// AgentOptions carries the per-call attribution and overrides a
// capture site supplies. All fields are optional; a zero AgentOptions
// captures with no story/app attribution and the package defaults
// below.
type AgentOptions struct {
	StoryName   string
	StoryLine   string
	AppName     string
	AppUUID     string
	AppVersion  string
	AgentConfig map[string]string

	// AllowUserEvents gates whether a per-app agent override (see
	// Reporter.InitAppAgents) additionally receives this capture.
	// Defaults to true via NewAgentOptions; a caller building the
	// struct by hand must set it explicitly.
	AllowUserEvents bool

	// SuppressEvents, when true, is honored by callers that choose not
	// to capture at all -- Reporter itself does not inspect it; it
	// exists so capture sites can carry the same options struct into a
	// conditional without a separate flag.
	SuppressEvents bool

	// SuppressAgents lists registered agent ids to skip for this
	// capture only (e.g. []string{"sentry"}).
	SuppressAgents []string
}

// NewAgentOptions returns an AgentOptions with the package defaults
// applied (AllowUserEvents true, everything else zero).
func NewAgentOptions() AgentOptions {
	return AgentOptions{AllowUserEvents: true}
}

func (o AgentOptions) suppresses(agentID string) bool {
	for _, id := range o.SuppressAgents {
		if id == agentID {
			return true
		}
	}
	return false
}
