// Package blacklist decides which URLs are never imported.
//
// A pattern is either a host name, which blocks that host and all of its
// subdomains, or a regular expression between slashes, which is matched
// against the full URL:
//
//	example.com
//	/^https?://[^/]+/login/
package blacklist

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Blacklist is safe for concurrent use once built.
type Blacklist struct {
	hosts    []string
	patterns []*regexp.Regexp
}

// New compiles patterns. Blank entries are ignored.
func New(patterns []string) (*Blacklist, error) {
	b := &Blacklist{}
	for _, raw := range patterns {
		p := strings.TrimSpace(raw)
		if p == "" {
			continue
		}

		if len(p) > 2 && strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/") {
			re, err := regexp.Compile(p[1 : len(p)-1])
			if err != nil {
				return nil, fmt.Errorf("blacklist pattern %q: %w", p, err)
			}
			b.patterns = append(b.patterns, re)
			continue
		}

		b.hosts = append(b.hosts, strings.TrimPrefix(strings.ToLower(p), "."))
	}
	return b, nil
}

// IsAllowed reports whether rawURL may be imported. Only http and https URLs
// are ever allowed.
func (b *Blacklist) IsAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, h := range b.hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return false
		}
	}

	for _, re := range b.patterns {
		if re.MatchString(rawURL) {
			return false
		}
	}
	return true
}

// Len returns the number of patterns.
func (b *Blacklist) Len() int {
	return len(b.hosts) + len(b.patterns)
}
