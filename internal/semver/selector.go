package semver

import "strings"

// Selector is one half of a VersionConstraint: a matching set (the
// "preferred" selector accepts versions, the "rejected" selector vetoes
// them) plus a flag describing whether resolution is allowed to
// short-circuit when some other selector has already chosen a version.
//
// Only a selector with no fixed membership test at all -- "latest" and
// its variants -- is dynamic: answering "does version V satisfy this"
// for those requires knowing what the repository considers newest right
// now, not just V itself. A floating selector like "1.+" still reduces
// to an ordinary range ("1.x") and can answer membership on its own,
// but, like a dynamic selector, it does not short-circuit. Every other
// selector does.
type Selector struct {
	raw             string
	constraint      Constraint
	dynamic         bool
	canShortCircuit bool
}

// NewSelector parses raw into a Selector. Gradle-style floating
// selectors ("1.+", "1.2.+") are translated into the equivalent
// wildcard range ("1.x", "1.2.x") that Masterminds/semver understands
// natively. "latest" and its variants have no such translation -- they
// depend on the full candidate set -- and are kept dynamic.
func NewSelector(raw string) (Selector, error) {
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "" || trimmed == "*":
		c, err := ParseConstraint("*")
		if err != nil {
			return Selector{}, err
		}
		return Selector{raw: trimmed, constraint: c, canShortCircuit: true}, nil

	case strings.HasPrefix(trimmed, "latest"):
		return Selector{raw: trimmed, dynamic: true, canShortCircuit: false}, nil

	case strings.HasSuffix(trimmed, "+"):
		wildcard := strings.TrimSuffix(trimmed, "+") + "x"
		c, err := ParseConstraint(wildcard)
		if err != nil {
			return Selector{}, err
		}
		// A floating selector must always re-check the full candidate
		// set for the newest match in range, so it can't short-circuit
		// even though it can answer plain membership on its own.
		return Selector{raw: trimmed, constraint: c, canShortCircuit: false}, nil

	default:
		c, err := ParseConstraint(trimmed)
		if err != nil {
			return Selector{}, err
		}
		return Selector{raw: trimmed, constraint: c, canShortCircuit: true}, nil
	}
}

// Accept reports whether the selector matches v. Dynamic selectors that
// failed to resolve to a concrete constraint accept nothing by
// construction of allSelectorsAgreeWith's caller contract; callers that
// need "everything" semantics should not rely on Accept for dynamic
// selectors, they should resolve the dynamic selector against the
// candidate set first.
func (s Selector) Accept(v Version) bool {
	if s.dynamic {
		return false
	}
	return Satisfies(v, s.constraint)
}

// CanShortCircuitWhenVersionAlreadyPreselected reports whether a
// candidate already chosen by some other selector can be accepted
// without rescanning every published version for this selector.
func (s Selector) CanShortCircuitWhenVersionAlreadyPreselected() bool {
	return s.canShortCircuit
}

// IsDynamic reports whether this selector has no fixed membership test
// of its own ("latest" and its variants): callers that need to pick a
// concrete version, such as a component id resolver, must fall back to
// "highest published" instead of filtering candidates through Accept.
func (s Selector) IsDynamic() bool {
	return s.dynamic
}

func (s Selector) String() string { return s.raw }

// VersionConstraint pairs an accept selector with an optional veto
// selector, .
type VersionConstraint struct {
	Preferred *Selector
	Rejected  *Selector
}

// NewVersionConstraint builds a VersionConstraint from raw preferred and
// rejected selector strings. An empty rejected string means "no veto".
func NewVersionConstraint(preferred, rejected string) (VersionConstraint, error) {
	p, err := NewSelector(preferred)
	if err != nil {
		return VersionConstraint{}, err
	}
	vc := VersionConstraint{Preferred: &p}
	if strings.TrimSpace(rejected) == "" {
		return vc, nil
	}
	r, err := NewSelector(rejected)
	if err != nil {
		return VersionConstraint{}, err
	}
	vc.Rejected = &r
	return vc, nil
}
