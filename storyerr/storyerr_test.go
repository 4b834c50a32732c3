package storyerr_test

import (
	"strings"
	"testing"

	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

func TestSentinelsAreNotConfusedWithEachOther(t *testing.T) {
	if storyerr.IsBreak(storyerr.Return(value.Null())) {
		t.Error("a RETURN sentinel must not be reported as BREAK")
	}
	if !storyerr.IsBreak(storyerr.Break) {
		t.Error("storyerr.Break must be reported as BREAK")
	}
	if v, ok := storyerr.AsReturn(storyerr.Break); ok {
		t.Errorf("BREAK must not be reported as RETURN, got %v", v)
	}
}

func TestReturnCarriesItsValue(t *testing.T) {
	v, ok := storyerr.AsReturn(storyerr.Return(value.Int(42)))
	if !ok {
		t.Fatal("expected RETURN sentinel")
	}
	if got := v.Int(); got != 42 {
		t.Errorf("return value = %d, want 42", got)
	}
}

func TestErrorMessagesAreAttributedAndTemplated(t *testing.T) {
	err := &storyerr.ServiceNotFound{
		Attribution: storyerr.Attribution{Story: "s1", Line: "3"},
		Name:        "slack",
	}
	if !strings.Contains(err.Error(), "slack") {
		t.Errorf("expected message to mention service name, got %q", err.Error())
	}

	attr, ok := storyerr.Extract(err)
	if !ok {
		t.Fatal("expected ServiceNotFound to be Attributed")
	}
	if attr.Story != "s1" || attr.Line != "3" {
		t.Errorf("attribution = %+v, want story=s1 line=3", attr)
	}
}

func TestEnvironmentVariableNotFoundHintsAtConfigSet(t *testing.T) {
	err := &storyerr.EnvironmentVariableNotFound{
		Service: "postgres", Variable: "DB_HOST",
	}
	if !strings.Contains(err.Error(), "story config set") {
		t.Errorf("expected hint about story config set, got %q", err.Error())
	}
}
