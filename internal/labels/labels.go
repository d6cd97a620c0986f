// Package labels derives topical Jira labels from free-text descriptions.
// Inference is a fixed-vocabulary scan with no external calls, so it is
// deterministic and cheap enough to run on every description change.
package labels

import (
	"regexp"
	"strings"
)

// MaxLabels caps the number of inferred labels per description.
const MaxLabels = 5

// Keywords that make good standalone labels, spanning technical, urgency,
// component and business terms.
var vocabulary = map[string]struct{}{
	// programming / tech
	"api": {}, "database": {}, "frontend": {}, "backend": {}, "mobile": {},
	"web": {}, "server": {}, "authentication": {}, "oauth": {}, "login": {},
	"payment": {}, "gateway": {}, "security": {}, "performance": {},
	"bug": {}, "error": {}, "timeout": {}, "crash": {}, "fix": {},

	// priority / urgency
	"critical": {}, "urgent": {}, "important": {}, "high": {}, "medium": {}, "low": {},

	// components
	"ui": {}, "ux": {}, "design": {}, "infrastructure": {}, "devops": {},
	"testing": {}, "deployment": {}, "monitoring": {}, "logging": {},
	"backup": {}, "migration": {},

	// business
	"user": {}, "customer": {}, "admin": {}, "report": {}, "analytics": {},
	"dashboard": {}, "checkout": {}, "cart": {}, "wishlist": {},
	"profile": {}, "settings": {}, "notification": {},
}

// Compound concepts mapped to canonical hyphenated labels. Kept as a slice
// so the scan order (and therefore the output order) is fixed.
var compounds = []struct {
	label    string
	keywords []string
}{
	{"two-factor", []string{"two", "factor", "authentication", "2fa"}},
	{"single-sign-on", []string{"single", "sign", "sso"}},
	{"real-time", []string{"real", "time", "realtime"}},
	{"third-party", []string{"third", "party", "external"}},
	{"end-to-end", []string{"end", "to", "end", "e2e"}},
}

var wordRe = regexp.MustCompile(`\b\w+\b`)

// FromDescription returns up to MaxLabels distinct lowercase labels for the
// given text: vocabulary words in first-seen order, then compound labels
// whose trigger words appear anywhere in the text.
func FromDescription(description string) []string {
	if description == "" {
		return nil
	}

	var found []string
	seen := make(map[string]bool)

	lower := strings.ToLower(description)
	for _, word := range wordRe.FindAllString(lower, -1) {
		if _, ok := vocabulary[word]; ok && !seen[word] {
			seen[word] = true
			found = append(found, word)
		}
	}

	for _, c := range compounds {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				if !seen[c.label] {
					seen[c.label] = true
					found = append(found, c.label)
				}
				break
			}
		}
	}

	if len(found) > MaxLabels {
		found = found[:MaxLabels]
	}
	return found
}

// Normalize converts one raw label to Jira form: trimmed, lowercased, with
// inner spaces replaced by hyphens.
func Normalize(raw string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "-")
}

// Union appends the extra labels not already present, preserving the
// display order of both inputs.
func Union(existing, extra []string) []string {
	out := append([]string(nil), existing...)
	seen := make(map[string]bool, len(existing))
	for _, l := range existing {
		seen[l] = true
	}
	for _, l := range extra {
		if l != "" && !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
