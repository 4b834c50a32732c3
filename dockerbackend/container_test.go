package dockerbackend

import (
	"strings"
	"testing"

	"github.com/docker/go-connections/nat"

	"github.com/jayvdb/platform-engine/storyerr"
	"github.com/jayvdb/platform-engine/value"
)

func portKey(s string) nat.Port { return nat.Port(s) }

func TestArgsToCmdAppendsResolvedArgsAfterBaseCmd(t *testing.T) {
	cmd := argsToCmd([]string{"psql", "-c"}, []value.Value{value.String("select 1"), value.Int(2)})
	want := []string{"psql", "-c", "select 1", "2"}
	if len(cmd) != len(want) {
		t.Fatalf("cmd = %v, want %v", cmd, want)
	}
	for i := range want {
		if cmd[i] != want[i] {
			t.Errorf("cmd[%d] = %q, want %q", i, cmd[i], want[i])
		}
	}
}

func TestEnvMapToSliceFormatsKeyEqualsValue(t *testing.T) {
	out := envMapToSlice(map[string]string{"FOO": "bar"})
	if len(out) != 1 || out[0] != "FOO=bar" {
		t.Fatalf("got %v", out)
	}
}

func TestPublishedPortsExposesEachDeclaredPort(t *testing.T) {
	exposed, bindings := publishedPorts([]int{5432, 6379})

	if len(exposed) != 2 || len(bindings) != 2 {
		t.Fatalf("exposed = %v, bindings = %v", exposed, bindings)
	}
	for _, p := range []string{"5432/tcp", "6379/tcp"} {
		if _, ok := bindings[portKey(p)]; !ok {
			t.Errorf("expected a binding for %s", p)
		}
		if bindings[portKey(p)][0].HostPort != "" {
			t.Errorf("expected an empty host port (auto-assign), got %q", bindings[portKey(p)][0].HostPort)
		}
	}
}

func TestContainerNameIsUniquePerCall(t *testing.T) {
	a := containerName("story-1", "db")
	b := containerName("story-1", "db")
	if a == b {
		t.Fatalf("expected distinct names, got %q twice", a)
	}
	if !strings.HasPrefix(a, "engine-story-1-db-") {
		t.Errorf("name = %q, want engine-story-1-db- prefix", a)
	}
}

func TestContainerSpecRegistryLookupMiss(t *testing.T) {
	reg := NewContainerSpecRegistry()
	_, err := reg.Lookup("db", storyerr.Attribution{Story: "s", Line: "1"})
	if err == nil {
		t.Fatal("expected an error for an unregistered service")
	}
	var notRegistered *storyerr.ContainerSpecNotRegisteredError
	if !asContainerSpecNotRegistered(err, &notRegistered) {
		t.Fatalf("expected ContainerSpecNotRegisteredError, got %T: %v", err, err)
	}
	if notRegistered.ContainerName != "db" {
		t.Errorf("ContainerName = %q, want db", notRegistered.ContainerName)
	}
}

func TestContainerSpecRegistryLookupHit(t *testing.T) {
	reg := NewContainerSpecRegistry()
	reg.Register("db", ContainerSpec{Image: "postgres:16"})

	spec, err := reg.Lookup("db", storyerr.Attribution{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Image != "postgres:16" {
		t.Errorf("image = %q, want postgres:16", spec.Image)
	}
}

func asContainerSpecNotRegistered(err error, target **storyerr.ContainerSpecNotRegisteredError) bool {
	e, ok := err.(*storyerr.ContainerSpecNotRegisteredError)
	if !ok {
		return false
	}
	*target = e
	return true
}
