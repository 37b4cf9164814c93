package cache

import "strings"

// GenerateKey joins parts with ':' into a cache key.
func GenerateKey(parts ...string) string {
	return strings.Join(parts, ":")
}

// BuildPattern creates a glob matching every key under prefix.
func BuildPattern(parts ...string) string {
	return GenerateKey(parts...) + ":*"
}
