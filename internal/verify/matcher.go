// Package verify compares solver answers against challenge ground truth.
package verify

import (
	"strings"

	"github.com/timeblind/timeblind-go/internal/mask"
)

// shapeSynonyms maps each canonical shape answer to accepted variants.
var shapeSynonyms = map[string][]string{
	"rectangle": {"rect", "box"},
	"circle":    {"round", "ball", "oval"},
	"triangle":  {"tri"},
	"heart":     {"love", "valentine"},
	"arrow":     {"pointer"},
}

// Match reports whether a solver's answer matches the ground truth for the
// given mode. Comparison is case- and whitespace-insensitive; shape mode
// accepts common synonyms and depth mode accepts the generic label.
func Match(mode mask.Mode, truth, answer string) bool {
	truth = normalize(truth)
	answer = normalize(answer)
	if answer == "" {
		return false
	}
	if answer == truth {
		return true
	}

	switch mode {
	case mask.ModeShape:
		for _, syn := range shapeSynonyms[truth] {
			if answer == syn {
				return true
			}
		}
	case mask.ModeDepth:
		return answer == "object"
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
