package common

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to the given bool
func BoolPtr(b bool) *bool {
	return &b
}

var (
	jsonObjRe = regexp.MustCompile(`(?s)\{.*\}`)
	jsonArrRe = regexp.MustCompile(`(?s)\[.*\]`)
)

// ExtractJSON extracts JSON content from a text string. LLM replies often
// wrap the object in prose or markdown fences; this finds the outermost
// {...} or [...] span and validates it parses.
func ExtractJSON(text string) (string, error) {
	if match := jsonObjRe.FindString(text); match != "" {
		var obj interface{}
		if err := json.Unmarshal([]byte(match), &obj); err == nil {
			return match, nil
		}
	}

	if match := jsonArrRe.FindString(text); match != "" {
		var arr interface{}
		if err := json.Unmarshal([]byte(match), &arr); err == nil {
			return match, nil
		}
	}

	return "", fmt.Errorf("no valid JSON found in text")
}

// GetStringValue retrieves a string value from a map using multiple possible keys
// It tries each key in order and returns the first non-empty value found
func GetStringValue(data map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		if val, ok := data[key]; ok {
			if strVal, ok := val.(string); ok && strVal != "" {
				return strVal, true
			}
		}
	}
	return "", false
}

// Truncate shortens a string for logging.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "... [truncated]"
}
