// Package extensions maintains the per-theme extension registry:
// discovery, alteration, enablement from settings, and dependency
// compatibility checks against the installed-module table.
package extensions

import (
	"regexp"
	"strconv"
	"strings"
)

// Dependency is one parsed dependency declaration, e.g. "bar (>=2.0)".
type Dependency struct {
	Name        string
	Constraints []Constraint
}

// Constraint is a single version comparison within a dependency.
type Constraint struct {
	Op      string // one of =, ==, !=, <, <=, >, >=
	Version string
}

var corePrefix = regexp.MustCompile(`^\d+\.x-`)

// NormalizeVersion strips the core-compatibility prefix ("7.x-") and a
// development suffix ("-dev") so that range comparisons see the bare
// project version.
func NormalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	v = corePrefix.ReplaceAllString(v, "")
	v = strings.TrimSuffix(v, "-dev")
	return v
}

// ParseDependency parses a declaration of the form
// "name (op version, op version)". The parenthesized part is optional;
// a bare version means exact match.
func ParseDependency(s string) Dependency {
	s = strings.TrimSpace(s)

	open := strings.Index(s, "(")
	if open < 0 {
		return Dependency{Name: s}
	}

	dep := Dependency{Name: strings.TrimSpace(s[:open])}
	spec := strings.TrimSpace(s[open+1:])
	spec = strings.TrimSuffix(spec, ")")

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		op := "="
		for _, candidate := range []string{">=", "<=", "==", "!=", ">", "<", "="} {
			if strings.HasPrefix(part, candidate) {
				op = candidate
				part = strings.TrimSpace(part[len(candidate):])
				break
			}
		}
		if op == "==" {
			op = "="
		}
		dep.Constraints = append(dep.Constraints, Constraint{
			Op:      op,
			Version: NormalizeVersion(part),
		})
	}
	return dep
}

// Compatible reports whether the installed version satisfies every
// constraint. An empty constraint list accepts any installed version.
func (d Dependency) Compatible(installed string) bool {
	installed = NormalizeVersion(installed)
	for _, c := range d.Constraints {
		if !c.matches(installed) {
			return false
		}
	}
	return true
}

func (c Constraint) matches(installed string) bool {
	want := c.Version

	// A branch constraint like "2.x" compares the major version only.
	if strings.HasSuffix(want, ".x") {
		major := strings.TrimSuffix(want, ".x")
		installedMajor := installed
		if dot := strings.IndexAny(installed, ".-"); dot >= 0 {
			installedMajor = installed[:dot]
		}
		cmp := CompareVersions(installedMajor, major)
		return applyOp(c.Op, cmp)
	}

	return applyOp(c.Op, CompareVersions(installed, want))
}

func applyOp(op string, cmp int) bool {
	switch op {
	case "=":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}

// Pre-release ranks follow the platform's version ordering:
// dev < alpha < beta < rc < stable < pl, numeric parts above stable.
const (
	rankDev = iota
	rankAlpha
	rankBeta
	rankRC
	rankStable
	rankNumeric
	rankPatchLevel
)

// CompareVersions orders two normalized version strings, returning
// -1, 0, or 1. Segments split on '.', '-', '_' and on digit/letter
// boundaries; missing segments rank as stable so "2.0" sorts above
// "2.0-beta1" and below "2.0.1".
func CompareVersions(a, b string) int {
	as := segments(a)
	bs := segments(b)

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av := segmentAt(as, i)
		bv := segmentAt(bs, i)

		ar, an := rank(av)
		br, bn := rank(bv)
		if ar != br {
			if ar < br {
				return -1
			}
			return 1
		}
		if ar == rankNumeric && an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
		if ar != rankNumeric && av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// segmentAt returns the i-th segment, or the empty string past the
// end; rank treats the empty segment as stable.
func segmentAt(segs []string, i int) string {
	if i < len(segs) {
		return segs[i]
	}
	return ""
}

func rank(segment string) (int, int) {
	switch strings.ToLower(segment) {
	case "":
		return rankStable, 0
	case "dev":
		return rankDev, 0
	case "alpha", "a":
		return rankAlpha, 0
	case "beta", "b":
		return rankBeta, 0
	case "rc":
		return rankRC, 0
	case "pl", "p":
		return rankPatchLevel, 0
	}
	if n, err := strconv.Atoi(segment); err == nil {
		return rankNumeric, n
	}
	// Unknown words sort with the pre-release alphas.
	return rankAlpha, 0
}

// segments splits a version on separators and digit/letter boundaries:
// "2.0-beta1" becomes ["2", "0", "beta", "1"].
func segments(v string) []string {
	var result []string
	var current strings.Builder
	var currentDigit bool

	flush := func() {
		if current.Len() > 0 {
			result = append(result, current.String())
			current.Reset()
		}
	}

	for _, r := range v {
		switch {
		case r == '.' || r == '-' || r == '_':
			flush()
		case r >= '0' && r <= '9':
			if current.Len() > 0 && !currentDigit {
				flush()
			}
			currentDigit = true
			current.WriteRune(r)
		default:
			if current.Len() > 0 && currentDigit {
				flush()
			}
			currentDigit = false
			current.WriteRune(r)
		}
	}
	flush()
	return result
}
