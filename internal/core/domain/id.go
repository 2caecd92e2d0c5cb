package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// SanitizeDocumentID converts an arbitrary deck filename into a canonical,
// collision-resistant ASCII key usable as an index namespace and record-ID
// prefix. The managed index only accepts ASCII namespaces, so every
// non-ASCII rune is deliberately discarded - a fully Korean title reduces
// to nothing and triggers the fallback.
//
// The transformation, in order: strip a known document extension, map
// whitespace and ()[]- to underscores, drop everything that is not ASCII
// alphanumeric or underscore, collapse underscore runs, trim underscores,
// lowercase. Only extensions in deckExtensions are stripped: a dotted
// title like "Results v1.2" must not collapse onto "Results v1".
//
// When the result is empty or a bare underscore, a timestamp-based fallback
// key is generated instead and fallback is true. Callers must log the
// fallback as a warning rather than accepting it silently: the fallback
// branch is non-deterministic, everything else is. Sanitization is
// idempotent on ASCII-safe input.
// deckExtensions are the source-file suffixes stripped before sanitizing.
var deckExtensions = map[string]bool{
	".pdf":  true,
	".ppt":  true,
	".pptx": true,
	".key":  true,
}

func SanitizeDocumentID(raw string) (id string, fallback bool) {
	name := raw
	if ext := strings.ToLower(filepath.Ext(name)); deckExtensions[ext] {
		name = name[:len(name)-len(ext)]
	}

	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '(' || r == ')' || r == '[' || r == ']' || r == '-' || r == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		case r < 128 && (r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			// Non-ASCII or other punctuation: dropped, but still
			// separates words so "한글A한글B" does not fuse to "ab".
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	id = strings.ToLower(strings.Trim(b.String(), "_"))
	if id == "" || id == "_" {
		return fallbackDocumentID(time.Now()), true
	}
	return id, false
}

// fallbackDocumentID builds the timestamp key used when sanitization
// yields a degenerate result. Second precision matches the upstream
// convention for generated IDs.
func fallbackDocumentID(now time.Time) string {
	return "doc_" + now.Format("20060102_150405")
}
