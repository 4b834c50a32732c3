// Package storyerr implements the control-flow sentinels and the
// error taxonomy that the interpreter and Reporter branch on by kind.
//
// Every error kind except TooManyActiveApps embeds Attribution
// directly, set as a struct
// literal field at the point an error is constructed, so the outermost
// HTTP handler and the Reporter can attach the failure to a specific
// story execution without the caller having to thread that context
// through every return path by hand. Attribution and Extract carry no
// reference to the story package itself -- storyerr must not depend on
// story, since story depends on storyerr for its own failure returns.
package storyerr

import "fmt"

// Attribution identifies the story and line a failure occurred in.
// Line is the opaque ln string from the line tree; empty means
// "not yet known" or "not applicable".
type Attribution struct {
	Story string
	Line  string
}

// StoryscriptError is the base user-visible error kind: any failure
// carrying optional story/line references and an optional root cause
// for chained failures.
type StoryscriptError struct {
	Attribution
	Message string
	Root    error
}

func (e *StoryscriptError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "story execution failed"
}

func (e *StoryscriptError) Unwrap() error { return e.Root }

// NewStoryscriptError builds a StoryscriptError with the given message.
func NewStoryscriptError(message string, attr Attribution, root error) *StoryscriptError {
	return &StoryscriptError{Attribution: attr, Message: message, Root: root}
}

// StoryscriptRuntimeError signals an internal invariant was violated
// -- a bug in the interpreter itself, not a user authoring mistake.
type StoryscriptRuntimeError struct {
	Attribution
	Message string
}

func (e *StoryscriptRuntimeError) Error() string {
	return fmt.Sprintf("internal runtime error: %s", e.Message)
}

// InvalidKeywordUsage is raised by break/return when no matching
// enclosing construct exists.
type InvalidKeywordUsage struct {
	Attribution
	Keyword string
}

func (e *InvalidKeywordUsage) Error() string {
	return fmt.Sprintf("%s used outside of its valid context", e.Keyword)
}

// ArgumentNotFoundError is raised when a required named argument is
// missing from a call or service invocation.
type ArgumentNotFoundError struct {
	Attribution
	Name string
}

func (e *ArgumentNotFoundError) Error() string {
	return fmt.Sprintf("the argument %s was not found", e.Name)
}

// ArgumentTypeMismatchError is raised when a resolved argument's value
// kind does not match what the target (service action or mutation)
// declares.
type ArgumentTypeMismatchError struct {
	Attribution
	ArgName string
	Type    string
}

func (e *ArgumentTypeMismatchError) Error() string {
	return fmt.Sprintf("the argument %s must be of type %s", e.ArgName, e.Type)
}

// InvalidCommandError is raised when a service/action name is not a
// recognized command.
type InvalidCommandError struct {
	Attribution
	Name string
}

func (e *InvalidCommandError) Error() string {
	return fmt.Sprintf("%s is not a valid command", e.Name)
}

// ServiceNotFound is raised when line.service has no binding in context
// or no registered backend.
type ServiceNotFound struct {
	Attribution
	Name string
}

func (e *ServiceNotFound) Error() string {
	return fmt.Sprintf("the service %s was not found; "+
		"search the Hub for services you can use", e.Name)
}

// ActionNotFound is raised when a service exists but does not support
// the requested command.
type ActionNotFound struct {
	Attribution
	Service string
	Action  string
}

func (e *ActionNotFound) Error() string {
	return fmt.Sprintf("the action %s was not found on service %s",
		e.Action, e.Service)
}

// EnvironmentVariableNotFound is raised when a service requires an
// environment variable that was not configured for this app.
type EnvironmentVariableNotFound struct {
	Attribution
	Service  string
	Variable string
}

func (e *EnvironmentVariableNotFound) Error() string {
	return fmt.Sprintf(
		"the environment variable %s is required by service %s, "+
			"but was not found; run `story config set` to set it",
		e.Variable, e.Service)
}

// ContainerSpecNotRegisteredError is raised when a container name has
// no registered spec in the backend's registry.
type ContainerSpecNotRegisteredError struct {
	Attribution
	ContainerName string
}

func (e *ContainerSpecNotRegisteredError) Error() string {
	return fmt.Sprintf("the container %s is not registered", e.ContainerName)
}

// K8sError wraps a failure from the container backend.
type K8sError struct {
	Attribution
	Message string
}

func (e *K8sError) Error() string { return e.Message }

// TypeAssertionRuntimeError is raised when a value's kind does not
// match an expected kind at a point where the interpreter itself
// (not user input) asserted it would.
type TypeAssertionRuntimeError struct {
	Attribution
	Expected string
	Received string
}

func (e *TypeAssertionRuntimeError) Error() string {
	return fmt.Sprintf("expected type %s but received type %s",
		e.Expected, e.Received)
}

// TypeValueRuntimeError is raised when a value's kind is correct but
// its runtime content is invalid for the operation being performed.
type TypeValueRuntimeError struct {
	Attribution
	Expected string
	Received string
	Value    string
}

func (e *TypeValueRuntimeError) Error() string {
	return fmt.Sprintf("expected type %s but received type %s for value %s",
		e.Expected, e.Received, e.Value)
}

const quotaDocsLink = "https://docs.storyscript.io/faq/quotas"

// TooManyVolumes is a quota violation: a story requested more volumes
// than the Beta plan allows.
type TooManyVolumes struct {
	Attribution
	Limit int
}

func (e *TooManyVolumes) Error() string {
	return fmt.Sprintf(
		"this app has reached the max number of volumes (%d) "+
			"allowed on the Beta plan; see %s", e.Limit, quotaDocsLink)
}

// TooManyServices is a quota violation: a story requested more
// concurrent services than the Beta plan allows.
type TooManyServices struct {
	Attribution
	Limit int
}

func (e *TooManyServices) Error() string {
	return fmt.Sprintf(
		"this app has reached the max number of services (%d) "+
			"allowed on the Beta plan; see %s", e.Limit, quotaDocsLink)
}

// TooManyActiveApps is a quota violation: the owner has reached the
// max number of concurrently running apps allowed on the Beta plan.
type TooManyActiveApps struct {
	Limit int
}

func (e *TooManyActiveApps) Error() string {
	return fmt.Sprintf(
		"you have reached the max number of active apps (%d) "+
			"allowed on the Beta plan; see %s", e.Limit, quotaDocsLink)
}
