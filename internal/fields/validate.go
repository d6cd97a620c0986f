package fields

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxSummaryLength is the Jira limit on the summary field.
const MaxSummaryLength = 255

var (
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	issueKeyRe = regexp.MustCompile(`^[A-Z]+-\d+$`)
)

// ValidateDate accepts the empty string (optional-field skip) or an exact
// YYYY-MM-DD calendar date. Overflowing dates such as 2025-02-30 are
// rejected by the strict parse.
func ValidateDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ValidateEmail accepts the empty string or a conventional
// local@domain.tld address.
func ValidateEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	return emailRe.MatchString(s)
}

// ValidateIssueKey accepts keys like TJ-123. Input is upper-cased before
// the check, so "tj-123" passes.
func ValidateIssueKey(s string) bool {
	return issueKeyRe.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// ValidateSummary accepts non-empty text of at most MaxSummaryLength
// characters.
func ValidateSummary(s string) bool {
	return s != "" && utf8.RuneCountInString(s) <= MaxSummaryLength
}
