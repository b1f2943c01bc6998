package filter

import (
	"fmt"
	"regexp"
)

// Matcher performs full-string regular expression matches. A nil Matcher
// matches nothing.
type Matcher struct {
	pattern string
	re      *regexp.Regexp
}

// Compile compiles pattern into an anchored Matcher. An empty pattern
// returns a nil Matcher so that, by default, nothing is excluded.
func Compile(pattern string) (*Matcher, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, &InvalidPatternError{Pattern: pattern, Err: err}
	}
	return &Matcher{pattern: pattern, re: re}, nil
}

// Excludes reports whether name matches the whole pattern
func (m *Matcher) Excludes(name string) bool {
	if m == nil {
		return false
	}
	return m.re.MatchString(name)
}

// String returns the source pattern
func (m *Matcher) String() string {
	if m == nil {
		return ""
	}
	return m.pattern
}

// Policy decides which (topic, group) edges are recorded
type Policy struct {
	Topic *Matcher
	Group *Matcher
}

// NewPolicy compiles the topic and group exclude patterns
func NewPolicy(topicPattern, groupPattern string) (*Policy, error) {
	topic, err := Compile(topicPattern)
	if err != nil {
		return nil, fmt.Errorf("topic filter: %w", err)
	}
	group, err := Compile(groupPattern)
	if err != nil {
		return nil, fmt.Errorf("group filter: %w", err)
	}
	return &Policy{Topic: topic, Group: group}, nil
}

// Accept returns true only if neither the topic nor the group is excluded.
// A nil Policy accepts everything.
func (p *Policy) Accept(topic, group string) bool {
	if p == nil {
		return true
	}
	return !p.Topic.Excludes(topic) && !p.Group.Excludes(group)
}

// ExcludeTopic reports whether topic fully matches pattern. Empty or
// invalid patterns exclude nothing.
func ExcludeTopic(topic, pattern string) bool {
	return exclude(topic, pattern)
}

// ExcludeGroup reports whether group fully matches pattern. Empty or
// invalid patterns exclude nothing.
func ExcludeGroup(group, pattern string) bool {
	return exclude(group, pattern)
}

func exclude(name, pattern string) bool {
	m, err := Compile(pattern)
	if err != nil {
		return false
	}
	return m.Excludes(name)
}
