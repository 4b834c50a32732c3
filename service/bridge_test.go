package service_test

import (
	"context"
	"testing"

	"github.com/jayvdb/platform-engine/service"
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/value"
)

type fakeApp struct{}

func (fakeApp) AppID() string   { return "app-1" }
func (fakeApp) AppName() string { return "app" }

type fakeBackend struct {
	execCalls       int
	startCalls      int
	whenCalls       int
	executeReturn   value.Value
	startReturn     story.StreamingService
	executeErr      error
}

func (f *fakeBackend) Execute(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (value.Value, error) {
	f.execCalls++
	return f.executeReturn, f.executeErr
}

func (f *fakeBackend) StartContainer(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (story.StreamingService, error) {
	f.startCalls++
	return f.startReturn, nil
}

func (f *fakeBackend) When(ctx context.Context, svc story.StreamingService, s *story.Story, line *story.Line, handler service.EventHandler) error {
	f.whenCalls++
	return nil
}

type recordingSink struct {
	execObserved, startObserved int
}

func (r *recordingSink) ObserveContainerExec(appID, storyName, svc string, seconds float64) {
	r.execObserved++
}
func (r *recordingSink) ObserveContainerStart(appID, storyName, svc string, seconds float64) {
	r.startObserved++
}

func TestBridgeExecuteRecordsMetricsAndDelegates(t *testing.T) {
	backend := &fakeBackend{executeReturn: value.Int(42)}
	sink := &recordingSink{}
	bridge := service.NewBridge(backend, sink)

	s := story.New(fakeApp{}, "my-story", story.Tree{}, nil)
	line := &story.Line{LN: "1", Service: "slack"}

	got, err := bridge.Execute(context.Background(), s, line, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Int() != 42 {
		t.Fatalf("expected the backend's return value, got %v", got)
	}
	if backend.execCalls != 1 {
		t.Fatalf("expected the backend to be called once, got %d", backend.execCalls)
	}
	if sink.execObserved != 1 {
		t.Fatalf("expected one exec observation, got %d", sink.execObserved)
	}
}

func TestBridgeStartContainerRecordsMetricsAndDelegates(t *testing.T) {
	backend := &fakeBackend{startReturn: story.StreamingService{Name: "redis"}}
	sink := &recordingSink{}
	bridge := service.NewBridge(backend, sink)

	s := story.New(fakeApp{}, "my-story", story.Tree{}, nil)
	line := &story.Line{LN: "1", Service: "redis"}

	got, err := bridge.StartContainer(context.Background(), s, line, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "redis" {
		t.Fatalf("expected the backend's streaming service, got %v", got)
	}
	if sink.startObserved != 1 {
		t.Fatalf("expected one start observation, got %d", sink.startObserved)
	}
}

func TestBridgeWhenDelegatesWithoutTiming(t *testing.T) {
	backend := &fakeBackend{}
	bridge := service.NewBridge(backend, nil)

	s := story.New(fakeApp{}, "my-story", story.Tree{}, nil)
	line := &story.Line{LN: "1"}

	err := bridge.When(context.Background(), story.StreamingService{}, s, line, func(context.Context, service.Event) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.whenCalls != 1 {
		t.Fatalf("expected the backend's When to be called once, got %d", backend.whenCalls)
	}
}
