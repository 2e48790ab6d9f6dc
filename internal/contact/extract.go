// Package contact resolves a single best contact email for a site through an
// ordered waterfall of tactics, each attempted only when the prior failed.
package contact

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// junkTerms flags placeholder, builder, and tracking addresses that look like
// emails but never reach a human.
var junkTerms = []string{
	"sentry", "no-reply", "noreply", "example", "domain",
	"email", "username", "user", "test", "wixpress",
}

// junkExts catches asset filenames the pattern mistakes for addresses
// (e.g. hero@2x.png).
var junkExts = []string{
	".png", ".jpg", ".jpeg", ".gif", ".css", ".js",
	".svg", ".woff", ".woff2", ".ttf", ".webp",
}

// priorityLocalParts orders the generic inbox names most likely to be read.
var priorityLocalParts = []string{
	"info", "contact", "sales", "hello", "office", "admin", "support", "estimate",
}

const (
	minEmailLen = 6
	maxEmailLen = 64
)

// ExtractEmail scans text for email-like tokens, discards junk, and returns
// the best candidate: the first one whose local part matches the priority
// list, else the first valid token in scan order. Returns "" when nothing
// survives filtering.
func ExtractEmail(text string) string {
	var valid []string
	for _, match := range emailPattern.FindAllString(text, -1) {
		if isJunk(match) {
			continue
		}
		valid = append(valid, match)
	}
	if len(valid) == 0 {
		return ""
	}

	for _, prefix := range priorityLocalParts {
		for _, email := range valid {
			local := strings.ToLower(email[:strings.IndexByte(email, '@')])
			if local == prefix {
				return email
			}
		}
	}
	return valid[0]
}

func isJunk(email string) bool {
	lower := strings.ToLower(email)
	if len(lower) < minEmailLen || len(lower) > maxEmailLen {
		return true
	}
	for _, term := range junkTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	for _, ext := range junkExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// NormalizeEmail lowercases and trims an address to its deduplication form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
