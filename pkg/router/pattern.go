package router

import (
	"regexp"
	"strings"

	"github.com/erebus-go/erebus/pkg/routepath"
)

// Wildcard matches any path as a full pattern, or any single segment value
// as a segment.
const Wildcard = "*"

type patternKind uint8

const (
	kindInvalid patternKind = iota
	kindSegments
	kindRegexp
)

// Pattern is a compiled route pattern: either "/"-separated segments or a
// regular expression. The zero Pattern never matches.
type Pattern struct {
	kind     patternKind
	raw      string
	segments []string
	re       *regexp.Regexp
}

// Compile normalizes a segment pattern.
func Compile(pattern string) Pattern {
	raw := routepath.Normalize(pattern)
	return Pattern{
		kind:     kindSegments,
		raw:      raw,
		segments: routepath.Split(raw),
	}
}

// CompileRegexp wraps a regular expression. A nil expression yields the zero
// Pattern.
func CompileRegexp(re *regexp.Regexp) Pattern {
	if re == nil {
		return Pattern{}
	}
	return Pattern{kind: kindRegexp, raw: re.String(), re: re}
}

// String returns the normalized pattern source.
func (p Pattern) String() string {
	return p.raw
}

// IsRegexp reports whether the pattern is a regular expression.
func (p Pattern) IsRegexp() bool {
	return p.kind == kindRegexp
}

// Match reports whether a normalized path matches the pattern.
func (p Pattern) Match(path string) bool {
	switch p.kind {
	case kindSegments:
		if p.raw == Wildcard || p.raw == path {
			return true
		}
		return matchSegments(p.segments, routepath.Split(path))
	case kindRegexp:
		return p.re.MatchString(path)
	default:
		return false
	}
}

// Params extracts the parameters a normalized path binds. For regexp
// patterns the named capture groups are returned.
func (p Pattern) Params(path string) Params {
	params := Params{}
	switch p.kind {
	case kindSegments:
		extractSegments(p.segments, routepath.Split(path), params)
	case kindRegexp:
		m := p.re.FindStringSubmatch(path)
		if m == nil {
			break
		}
		for i, name := range p.re.SubexpNames() {
			if i > 0 && name != "" {
				params[name] = m[i]
			}
		}
	}
	return params
}

// Matches reports whether path matches pattern. Neither side is normalized.
//
// Equal strings match, and the pattern "*" matches anything. Otherwise both
// are split on "/" and compared position by position: ":name" and "*"
// segments accept any value, literal segments must be equal. Paths with a
// different segment count never match.
func Matches(pattern, path string) bool {
	if pattern == Wildcard || pattern == path {
		return true
	}
	return matchSegments(routepath.Split(pattern), routepath.Split(path))
}

// ExtractParams returns the values bound by the ":name" segments of pattern.
func ExtractParams(pattern, path string) Params {
	params := Params{}
	extractSegments(routepath.Split(pattern), routepath.Split(path), params)
	return params
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for idx, seg := range pattern {
		if isParamSegment(seg) || seg == Wildcard {
			continue
		}
		if seg != path[idx] {
			return false
		}
	}
	return true
}

func extractSegments(pattern, path []string, params Params) {
	for idx, seg := range pattern {
		if !isParamSegment(seg) || idx >= len(path) {
			continue
		}
		params[seg[1:]] = path[idx]
	}
}

func isParamSegment(seg string) bool {
	return strings.HasPrefix(seg, ":")
}
