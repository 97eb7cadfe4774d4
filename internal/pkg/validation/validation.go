package validation

import (
	"regexp"
	"unicode/utf8"
)

// MaxSearchLength bounds the free-text search, in runes.
const MaxSearchLength = 200

// Trace ids come from callers, so only header-safe tokens are echoed back.
var traceIDRe = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

func IsValidTraceID(id string) bool {
	return traceIDRe.MatchString(id)
}

// IsValidSearch rejects search text longer than MaxSearchLength or not valid
// UTF-8.
func IsValidSearch(s string) bool {
	return utf8.ValidString(s) && utf8.RuneCountInString(s) <= MaxSearchLength
}
