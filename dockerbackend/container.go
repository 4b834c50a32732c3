package dockerbackend

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/matgreaves/run/onexit"

	"github.com/jayvdb/platform-engine/logctx"
	"github.com/jayvdb/platform-engine/service"
	"github.com/jayvdb/platform-engine/story"
	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

// instancePrefix namespaces container names so concurrent stories
// never collide on the Docker daemon's flat namespace.
const instancePrefix = "engine"

// Backend is the reference service.Backend, running each service as a
// Docker container. Execute runs a one-shot container per call;
// StartContainer brings up a long-lived one and keeps streaming its
// stdout onto an event bus so subsequent When subscriptions can
// replay and follow it.
type Backend struct {
	Registry *ContainerSpecRegistry

	mu     sync.Mutex
	buses  map[string]*service.Bus
	cancel map[string]context.CancelFunc
}

// NewBackend returns a Backend that resolves container images and
// commands from reg.
func NewBackend(reg *ContainerSpecRegistry) *Backend {
	return &Backend{
		Registry: reg,
		buses:    map[string]*service.Bus{},
		cancel:   map[string]context.CancelFunc{},
	}
}

func containerName(storyName, serviceName string) string {
	return fmt.Sprintf("%s-%s-%s-%s", instancePrefix, storyName, serviceName, uuid.NewString()[:8])
}

func attribution(s *story.Story, line *story.Line) storyerr.Attribution {
	return storyerr.Attribution{Story: s.Name, Line: line.LN}
}

func argsToCmd(cmd []string, args []value.Value) []string {
	out := make([]string, 0, len(cmd)+len(args))
	out = append(out, cmd...)
	for _, a := range args {
		out = append(out, a.GoString())
	}
	return out
}

func envMapToSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}

// publishedPorts builds the exposed-port set and host-assigned port
// bindings for a container's declared ports. Leaving HostPort empty
// tells Docker to pick an open host port itself.
func publishedPorts(ports []int) (nat.PortSet, nat.PortMap) {
	exposed := make(nat.PortSet, len(ports))
	bindings := make(nat.PortMap, len(ports))
	for _, p := range ports {
		port := nat.Port(fmt.Sprintf("%d/tcp", p))
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{{HostIP: "127.0.0.1"}}
	}
	return exposed, bindings
}

// Execute runs line.Service's configured command, plus args, in a
// fresh one-shot container, waits for it to exit, and returns its
// combined stdout as a string value.
func (b *Backend) Execute(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (value.Value, error) {
	spec, err := b.Registry.Lookup(line.Service, attribution(s, line))
	if err != nil {
		return value.Null(), err
	}

	cli, err := Client()
	if err != nil {
		return value.Null(), fmt.Errorf("service %q: docker client: %w", line.Service, err)
	}

	cmd := argsToCmd(spec.Cmd, args)
	name := containerName(s.Name, line.Service)
	resp, err := cli.ContainerCreate(ctx, &container.Config{
		Image: spec.Image,
		Cmd:   cmd,
		Env:   envMapToSlice(spec.Env),
	}, nil, nil, nil, name)
	if err != nil {
		return value.Null(), fmt.Errorf("service %q: create container: %w", line.Service, err)
	}
	cancelOnexit, _ := onexit.OnExitF("docker rm -f %s", resp.ID)
	defer func() {
		cli.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true})
		if cancelOnexit != nil {
			cancelOnexit()
		}
	}()

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return value.Null(), fmt.Errorf("service %q: start container: %w", line.Service, err)
	}

	var stdout, stderr bytes.Buffer
	logs, err := cli.ContainerLogs(ctx, resp.ID, container.LogsOptions{ShowStdout: true, ShowStderr: true, Follow: true})
	if err != nil {
		return value.Null(), fmt.Errorf("service %q: attach logs: %w", line.Service, err)
	}
	logDone := make(chan struct{})
	go func() {
		defer close(logDone)
		stdcopy.StdCopy(&stdout, &stderr, logs)
		logs.Close()
	}()

	waitCh, errCh := cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case result := <-waitCh:
		<-logDone
		if result.StatusCode != 0 {
			return value.Null(), fmt.Errorf("service %q: exited with code %d: %s", line.Service, result.StatusCode, stderr.String())
		}
		return value.String(stdout.String()), nil
	case err := <-errCh:
		<-logDone
		return value.Null(), fmt.Errorf("service %q: wait: %w", line.Service, err)
	case <-ctx.Done():
		<-logDone
		return value.Null(), ctx.Err()
	}
}

// StartContainer brings up a long-lived container for line.Service
// and returns a handle to it. The container's stdout lines are
// published onto a per-instance event bus as they arrive, for When
// subscribers.
func (b *Backend) StartContainer(ctx context.Context, s *story.Story, line *story.Line, args []value.Value) (story.StreamingService, error) {
	spec, err := b.Registry.Lookup(line.Service, attribution(s, line))
	if err != nil {
		return story.StreamingService{}, err
	}

	cli, err := Client()
	if err != nil {
		return story.StreamingService{}, fmt.Errorf("service %q: docker client: %w", line.Service, err)
	}

	name := containerName(s.Name, line.Service)
	exposedPorts, portBindings := publishedPorts(spec.Ports)
	resp, err := cli.ContainerCreate(ctx, &container.Config{
		Image:        spec.Image,
		Cmd:          argsToCmd(spec.Cmd, args),
		Env:          envMapToSlice(spec.Env),
		ExposedPorts: exposedPorts,
	}, &container.HostConfig{PortBindings: portBindings}, nil, nil, name)
	if err != nil {
		return story.StreamingService{}, fmt.Errorf("service %q: create container: %w", line.Service, err)
	}
	cancelOnexit, _ := onexit.OnExitF("docker rm -f %s", resp.ID)

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		cli.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true})
		if cancelOnexit != nil {
			cancelOnexit()
		}
		return story.StreamingService{}, fmt.Errorf("service %q: start container: %w", line.Service, err)
	}

	bus := service.NewBus()
	streamCtx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.buses[name] = bus
	b.cancel[name] = cancel
	b.mu.Unlock()

	go b.streamLogs(streamCtx, cli, resp.ID, bus)
	go b.awaitExit(cli, resp.ID, name, bus, cancelOnexit)

	return story.StreamingService{
		Name:          line.Service,
		Command:       line.Command,
		ContainerName: name,
		Hostname:      name,
	}, nil
}

// streamLogs copies a container's combined stdout/stderr line by
// line, publishing one event per line onto bus until ctx is done or
// the log stream ends.
func (b *Backend) streamLogs(ctx context.Context, cli *client.Client, containerID string, bus *service.Bus) {
	logs, err := cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true, Follow: true})
	if err != nil {
		bus.Publish(service.Event{Name: "error", Data: map[string]value.Value{"message": value.String(err.Error())}})
		return
	}
	defer logs.Close()

	pr, pw := io.Pipe()
	go func() {
		stdcopy.StdCopy(pw, pw, logs)
		pw.Close()
	}()

	scanner := bufio.NewScanner(pr)
	for scanner.Scan() {
		bus.Publish(service.Event{Name: "log", Data: map[string]value.Value{"line": value.String(scanner.Text())}})
		if ctx.Err() != nil {
			return
		}
	}
}

// awaitExit waits for the container to stop, publishes a terminal
// event, and cleans up Docker + bus bookkeeping.
func (b *Backend) awaitExit(cli *client.Client, containerID, name string, bus *service.Bus, cancelOnexit func()) {
	waitCh, errCh := cli.ContainerWait(context.Background(), containerID, container.WaitConditionNotRunning)
	var code int64
	select {
	case result := <-waitCh:
		code = result.StatusCode
	case <-errCh:
		code = -1
	}

	bus.Publish(service.Event{Name: "exit", Data: map[string]value.Value{"code": value.Int(code)}})

	b.mu.Lock()
	if cancel, ok := b.cancel[name]; ok {
		cancel()
	}
	delete(b.buses, name)
	delete(b.cancel, name)
	b.mu.Unlock()

	cleanCtx := context.Background()
	timeout := 10
	cli.ContainerStop(cleanCtx, containerID, container.StopOptions{Timeout: &timeout})
	cli.ContainerRemove(cleanCtx, containerID, container.RemoveOptions{Force: true})
	if cancelOnexit != nil {
		cancelOnexit()
	}
}

// When subscribes handler to svc's event bus, replaying every event
// published so far and then following new ones as they're published. A single subscription's
// events are delivered to handler one at a time, in order; distinct
// subscriptions run on independent goroutines and may interleave.
func (b *Backend) When(ctx context.Context, svc story.StreamingService, s *story.Story, line *story.Line, handler service.EventHandler) error {
	b.mu.Lock()
	bus, ok := b.buses[svc.ContainerName]
	b.mu.Unlock()
	if !ok {
		return &storyerr.ServiceNotFound{Attribution: attribution(s, line), Name: svc.Name}
	}

	log := slog.New(slog.NewTextHandler(logctx.Writer(ctx), nil))
	events := bus.Subscribe(ctx, 0)
	go func() {
		for event := range events {
			if err := handler(ctx, event); err != nil {
				log.Error("when handler failed", "service", svc.Name, "err", err)
			}
		}
	}()
	return nil
}
