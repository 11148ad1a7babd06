package guard

import "strings"

// AllowList is an immutable, ordered set of host rules.
//
// Rules are trimmed and lowercased once at construction. A rule matches a
// host as follows:
//
//	"*"            any host
//	".example.com" example.com and any of its subdomains
//	"example.com"  exactly example.com
type AllowList struct {
	rules []string
}

// NewAllowList normalizes rules, dropping blank entries.
func NewAllowList(rules []string) AllowList {
	out := make([]string, 0, len(rules))
	for _, rule := range rules {
		rule = strings.ToLower(strings.TrimSpace(rule))
		if rule == "" {
			continue
		}
		out = append(out, rule)
	}
	return AllowList{rules: out}
}

// Empty reports whether the list holds no rules.
func (a AllowList) Empty() bool {
	return len(a.rules) == 0
}

// Rules returns a copy of the normalized rules.
func (a AllowList) Rules() []string {
	return append([]string(nil), a.rules...)
}

// Matches reports whether host, already lowercased and without port,
// satisfies any rule.
func (a AllowList) Matches(host string) bool {
	if host == "" {
		return false
	}
	for _, rule := range a.rules {
		switch {
		case rule == "*":
			return true
		case strings.HasPrefix(rule, "."):
			if host == rule[1:] || strings.HasSuffix(host, rule) {
				return true
			}
		case host == rule:
			return true
		}
	}
	return false
}
