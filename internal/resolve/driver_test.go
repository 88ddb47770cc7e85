package resolve_test

import (
	"context"
	"testing"
	"time"

	"github.com/forgebuild/depresolve/internal/fixture"
	"github.com/forgebuild/depresolve/internal/resolve"
	"github.com/forgebuild/depresolve/internal/visitor"
)

func mustRegistry(t *testing.T, yamlDoc string) *fixture.Registry {
	t.Helper()
	r, err := fixture.Load([]byte(yamlDoc))
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	return r
}

func TestResolveLinearChain(t *testing.T) {
	registry := mustRegistry(t, `
root: g:root:1.0
modules:
  g:root:1.0:
    dependencies:
      - {module: "g:a", prefer: "1.0.0"}
  g:a:1.0.0:
    dependencies:
      - {module: "g:b", prefer: "1.0.0"}
  g:b:1.0.0:
    dependencies: []
`)

	driver := resolve.NewDriver(registry, registry, registry)
	collector := visitor.NewCollector()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := driver.Resolve(ctx, resolve.ResolveContext{Name: "t", Root: registry.Root()}, collector); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	result := collector.Result()
	for _, want := range []string{"g:root:1.0", "g:a:1.0.0", "g:b:1.0.0"} {
		if _, ok := result.Components[want]; !ok {
			t.Fatalf("expected %s in resolved graph, got %v", want, result.Components)
		}
	}
}

func TestResolveConflictPicksHighestVersion(t *testing.T) {
	registry := mustRegistry(t, `
root: g:root:1.0
modules:
  g:root:1.0:
    dependencies:
      - {module: "g:a", prefer: "1.0.0"}
      - {module: "g:b", prefer: "1.0.0"}
  g:a:1.0.0:
    dependencies:
      - {module: "g:c", prefer: "1.0.0"}
  g:b:1.0.0:
    dependencies:
      - {module: "g:c", prefer: "2.0.0"}
  g:c:1.0.0:
    dependencies: []
  g:c:2.0.0:
    dependencies: []
`)

	driver := resolve.NewDriver(registry, registry, registry)
	collector := visitor.NewCollector()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := driver.Resolve(ctx, resolve.ResolveContext{Name: "t", Root: registry.Root()}, collector); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	result := collector.Result()
	c, ok := result.Components["g:c:2.0.0"]
	if !ok {
		t.Fatalf("expected g:c:2.0.0 to win the conflict, got %v", result.Components)
	}
	if !c.IsSelected() {
		t.Fatalf("expected winning candidate to be marked selected")
	}
	if low, ok := result.Components["g:c:1.0.0"]; ok && low.IsSelected() {
		t.Fatalf("expected g:c:1.0.0 to have lost the conflict")
	}
}

func TestResolvePendingDependencyActivatesOnHardEdge(t *testing.T) {
	registry := mustRegistry(t, `
root: g:root:1.0
modules:
  g:root:1.0:
    dependencies:
      - {module: "g:a", prefer: "1.0.0"}
      - {module: "g:b", prefer: "1.0.0"}
  g:a:1.0.0:
    dependencies:
      - {module: "g:c", prefer: "1.0.0", constraintOnly: true}
  g:b:1.0.0:
    dependencies:
      - {module: "g:c", prefer: "1.0.0"}
  g:c:1.0.0:
    dependencies: []
`)

	driver := resolve.NewDriver(registry, registry, registry)
	collector := visitor.NewCollector()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := driver.Resolve(ctx, resolve.ResolveContext{Name: "t", Root: registry.Root()}, collector); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	result := collector.Result()
	if _, ok := result.Components["g:c:1.0.0"]; !ok {
		t.Fatalf("expected g:c:1.0.0 to be present once b's hard edge activates a's deferred constraint")
	}
}

func TestResolveFailsOnUnpublishedRoot(t *testing.T) {
	registry := mustRegistry(t, `
root: g:root:9.9
modules:
  g:a:1.0.0:
    dependencies: []
`)

	driver := resolve.NewDriver(registry, registry, registry)
	collector := visitor.NewCollector()

	err := driver.Resolve(context.Background(), resolve.ResolveContext{Name: "t", Root: registry.Root()}, collector)
	if err == nil {
		t.Fatalf("expected an error resolving an unpublished root")
	}
}
