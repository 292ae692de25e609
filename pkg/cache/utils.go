package cache

import "strings"

const keySep = ":"

// GenerateKey joins a prefix and its segments: GenerateKey("model", "elo") is "model:elo".
func GenerateKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + keySep + strings.Join(parts, keySep)
}

// BuildPattern matches every key under prefix.
func BuildPattern(prefix string) string {
	return prefix + "*"
}
