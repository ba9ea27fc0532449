package lang

// Language negotiation for the Lang header sent with every API request.
// The server only distinguishes Chinese from everything else, so whatever
// the source (stored preference or environment locale), tags collapse to
// "zh" or "en".

import (
	"os"
	"strings"
)

const (
	Chinese  = "zh"
	English  = "en"
	Fallback = English
)

// Normalize collapses a language tag to the two values the server accepts.
// Anything starting with "zh" (zh, zh-CN, zh_TW.UTF-8, ...) is Chinese;
// everything else, including the empty string, falls back to English.
func Normalize(tag string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(tag)), Chinese) {
		return Chinese
	}
	return Fallback
}

// Detect resolves the effective language: a stored preference wins, then the
// usual locale environment variables, then the fallback.
func Detect(stored string) string {
	if stored != "" {
		return Normalize(stored)
	}
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return Normalize(v)
		}
	}
	return Fallback
}
