package util

import (
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// NormalizeKey lowercases and trims an identifier used as a map key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
