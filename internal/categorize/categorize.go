// Package categorize suggests expense categories from a member's regex rules.
//
// Suggestions are advisory: a rule whose pattern does not compile is skipped,
// and nothing here ever returns an error to the caller.
package categorize

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/mmynk/splitpool/internal/models"
)

// Suggest returns the category of the first rule (in the given order) whose
// pattern matches name case-insensitively. ok is false when name is blank or
// nothing matches.
func Suggest(name string, rules []models.CategoryRule) (category string, ok bool) {
	if strings.TrimSpace(name) == "" {
		return "", false
	}
	for _, rule := range rules {
		re, err := Compile(rule.Pattern)
		if err != nil {
			slog.Debug("Skipping category rule with invalid pattern",
				"rule_id", rule.ID,
				"pattern", rule.Pattern,
				"error", err,
			)
			continue
		}
		if re.MatchString(name) {
			return rule.Category, true
		}
	}
	return "", false
}

// Compile compiles a rule pattern the way Suggest matches it.
func Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}
