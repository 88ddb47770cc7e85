// Command depresolve runs a single dependency resolve against a
// YAML-described in-memory registry and prints the result as a tree.
// It exists to exercise internal/resolve end to end: flag.* wiring
// plus a zap-backed logger, no control loop or manager to bootstrap.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/forgebuild/depresolve/internal/fixture"
	"github.com/forgebuild/depresolve/internal/logging"
	"github.com/forgebuild/depresolve/internal/resolve"
	"github.com/forgebuild/depresolve/internal/visitor"
)

func main() {
	var (
		registryPath string
		development  bool
		timeout      time.Duration
	)
	flag.StringVar(&registryPath, "registry", "", "path to a YAML registry document")
	flag.BoolVar(&development, "development", false, "use a human-readable development log encoder")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall resolve timeout")
	flag.Parse()

	logger := logging.New(logging.Options{Development: development, Level: zapcore.InfoLevel})

	if registryPath == "" {
		fmt.Fprintln(os.Stderr, "depresolve: -registry is required")
		os.Exit(2)
	}

	raw, err := os.ReadFile(registryPath)
	if err != nil {
		logger.Error(err, "failed to read registry", "path", registryPath)
		os.Exit(1)
	}

	registry, err := fixture.Load(raw)
	if err != nil {
		logger.Error(err, "failed to parse registry", "path", registryPath)
		os.Exit(1)
	}

	driver := resolve.NewDriver(registry, registry, registry)
	driver.Logger = logger

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rc := resolve.ResolveContext{Name: registry.Root().String(), Root: registry.Root()}

	tree := &visitor.Tree{Out: os.Stdout}
	if err := driver.Resolve(ctx, rc, tree); err != nil {
		logger.Error(err, "resolve failed")
		os.Exit(1)
	}
}
