// Package fixture implements an in-memory, YAML-backed registry that
// satisfies every external collaborator internal/resolve needs
// (DependencyToComponentIdResolver, ComponentMetaDataResolver,
// ResolveContextToComponentResolver). It exists for tests and for the
// depresolve CLI demo, standing in for whatever real package index a
// production resolver would talk to.
package fixture

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forgebuild/depresolve/internal/graph"
	"github.com/forgebuild/depresolve/internal/identity"
	"github.com/forgebuild/depresolve/internal/resolve"
	"github.com/forgebuild/depresolve/internal/semver"
)

// DependencyDoc is one dependency declaration in the YAML registry
// document.
type DependencyDoc struct {
	Module         string `yaml:"module"`
	Prefer         string `yaml:"prefer"`
	Reject         string `yaml:"reject"`
	ConstraintOnly bool   `yaml:"constraintOnly"`
	Optional       bool   `yaml:"optional"`
}

// VersionDoc is one published version of one module.
type VersionDoc struct {
	Dependencies []DependencyDoc `yaml:"dependencies"`
	FastResolve  bool            `yaml:"fastResolve"`
	SimulateSlow bool            `yaml:"simulateSlow"`
}

// Document is the shape of the registry's YAML source: a root
// coordinate plus every published module version, keyed
// "group:name:version".
type Document struct {
	Root    string                `yaml:"root"`
	Modules map[string]VersionDoc `yaml:"modules"`
}

// Registry is a parsed Document, indexed for lookup.
type Registry struct {
	root     identity.ModuleVersionIdentifier
	metadata map[identity.ModuleVersionIdentifier]*graph.ComponentMetadata
	versions map[identity.ModuleIdentifier][]string
	slow     map[identity.ModuleVersionIdentifier]bool
}

// Load parses raw YAML into a Registry.
func Load(raw []byte) (*Registry, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("fixture: parse registry: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument builds a Registry from an already-parsed Document.
func FromDocument(doc Document) (*Registry, error) {
	root, err := parseModuleVersion(doc.Root)
	if err != nil {
		return nil, fmt.Errorf("fixture: root: %w", err)
	}

	r := &Registry{
		root:     root,
		metadata: make(map[identity.ModuleVersionIdentifier]*graph.ComponentMetadata),
		versions: make(map[identity.ModuleIdentifier][]string),
		slow:     make(map[identity.ModuleVersionIdentifier]bool),
	}

	for key, v := range doc.Modules {
		vid, err := parseModuleVersion(key)
		if err != nil {
			return nil, fmt.Errorf("fixture: module %q: %w", key, err)
		}
		deps := make([]graph.DependencyMetadata, 0, len(v.Dependencies))
		for _, d := range v.Dependencies {
			moduleID, err := parseModule(d.Module)
			if err != nil {
				return nil, fmt.Errorf("fixture: module %q dependency %q: %w", key, d.Module, err)
			}
			constraint, err := semver.NewVersionConstraint(d.Prefer, d.Reject)
			if err != nil {
				return nil, fmt.Errorf("fixture: module %q dependency %q: %w", key, d.Module, err)
			}
			deps = append(deps, graph.DependencyMetadata{
				TargetModule:   moduleID,
				Constraint:     constraint,
				ConstraintOnly: d.ConstraintOnly,
				Optional:       d.Optional,
			})
		}
		r.metadata[vid] = &graph.ComponentMetadata{ID: vid, Dependencies: deps, FastResolve: v.FastResolve}
		r.versions[vid.Module] = append(r.versions[vid.Module], vid.Version)
		r.slow[vid] = v.SimulateSlow
	}

	for moduleID := range r.versions {
		sort.Strings(r.versions[moduleID])
	}
	return r, nil
}

// Root returns the registry's configured root coordinate.
func (r *Registry) Root() identity.ModuleVersionIdentifier { return r.root }

// ResolveRoot implements resolve.ResolveContextToComponentResolver.
func (r *Registry) ResolveRoot(ctx context.Context, rc resolve.ResolveContext) (*graph.ComponentMetadata, error) {
	meta, ok := r.metadata[rc.Root]
	if !ok {
		return nil, fmt.Errorf("fixture: no published metadata for root %s", rc.Root)
	}
	return meta, nil
}

// ResolveMetadata implements resolve.ComponentMetaDataResolver.
func (r *Registry) ResolveMetadata(ctx context.Context, id identity.ModuleVersionIdentifier) (*graph.ComponentMetadata, error) {
	meta, ok := r.metadata[id]
	if !ok {
		return nil, fmt.Errorf("fixture: no published metadata for %s", id)
	}
	return meta, nil
}

// IsFetchingMetadataCheap implements resolve.ComponentMetaDataResolver.
// The registry is entirely in memory, so every fetch is cheap unless
// the fixture document explicitly asked to simulate a slow one (for
// exercising the parallel download path in tests).
func (r *Registry) IsFetchingMetadataCheap(id identity.ModuleVersionIdentifier) bool {
	return !r.slow[id]
}

// ResolveComponentID implements resolve.DependencyToComponentIdResolver:
// it picks the highest published version of the selector's module that
// the preferred selector accepts and the rejected selector (if any)
// does not.
func (r *Registry) ResolveComponentID(ctx context.Context, sel *graph.SelectorState) (identity.ModuleVersionIdentifier, error) {
	published := r.versions[sel.Module]
	if len(published) == 0 {
		return identity.ModuleVersionIdentifier{}, fmt.Errorf("fixture: no versions published for %s", sel.Module)
	}

	preferred := sel.Constraint.Preferred
	dynamic := preferred == nil || preferred.IsDynamic()

	parsed := make([]semver.Version, 0, len(published))
	byVersion := make(map[semver.Version]string, len(published))
	for _, raw := range published {
		v, err := semver.ParseVersion(raw)
		if err != nil {
			continue
		}
		parsed = append(parsed, v)
		byVersion[v] = raw
	}

	best, ok := semver.MaxAccepted(parsed, func(v semver.Version) bool {
		if !dynamic && !preferred.Accept(v) {
			return false
		}
		if sel.Constraint.Rejected != nil && sel.Constraint.Rejected.Accept(v) {
			return false
		}
		return true
	})
	if !ok {
		return identity.ModuleVersionIdentifier{}, fmt.Errorf("fixture: no published version of %s satisfies %s", sel.Module, preferred)
	}
	return identity.ModuleVersionIdentifier{Module: sel.Module, Version: byVersion[best]}, nil
}

func parseModule(raw string) (identity.ModuleIdentifier, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return identity.ModuleIdentifier{}, fmt.Errorf("expected \"group:name\", got %q", raw)
	}
	return identity.ModuleIdentifier{Group: parts[0], Name: parts[1]}, nil
}

func parseModuleVersion(raw string) (identity.ModuleVersionIdentifier, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return identity.ModuleVersionIdentifier{}, fmt.Errorf("expected \"group:name:version\", got %q", raw)
	}
	return identity.ModuleVersionIdentifier{
		Module:  identity.ModuleIdentifier{Group: parts[0], Name: parts[1]},
		Version: parts[2],
	}, nil
}
