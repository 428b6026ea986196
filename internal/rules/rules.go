// Package rules holds the named acceptance checks gating whether a generated
// candidate replaces the original file. Rules within a kind are independent;
// all of them are evaluated in one pass so a reviewer sees the complete gap,
// and violating any one rule rejects the candidate.
package rules

import (
	"regexp"
	"strings"

	"github.com/spring-migrate/boot3migrate/internal/models"
)

// Rule is one named, independent acceptance check. Check returns true when
// the candidate passes. Most rules look only at the migrated text; the
// preservation family compares against the original to catch content the
// model silently dropped.
type Rule struct {
	Name  string
	Check func(original, migrated string) bool
}

// Evaluate runs every rule and returns the names of all violated rules, in
// declaration order. No short-circuiting.
func Evaluate(ruleset []Rule, original, migrated string) []string {
	var violated []string
	for _, rule := range ruleset {
		if !rule.Check(original, migrated) {
			violated = append(violated, rule.Name)
		}
	}
	return violated
}

// ForKind returns the ruleset for a pattern kind.
func ForKind(kind models.PatternKind) []Rule {
	switch kind {
	case models.PatternSecurityConfig:
		return SecurityRules()
	case models.PatternHibernate:
		return HibernateRules()
	case models.PatternConfigProperties:
		return ConfigPropertiesRules()
	default:
		return nil
	}
}

// extractSet collects the unique first submatches of re in text.
func extractSet(re *regexp.Regexp, text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		set[m[1]] = struct{}{}
	}
	return set
}

// preservesSet reports whether every fragment extracted from original is
// also extracted from migrated. Conservative: a false rejection is safe, a
// silent pass on dropped content is not.
func preservesSet(re *regexp.Regexp, original, migrated string) bool {
	want := extractSet(re, original)
	got := extractSet(re, migrated)
	for fragment := range want {
		if _, ok := got[fragment]; !ok {
			return false
		}
	}
	return true
}

// keptIfPresent reports whether marker, when present in original, is still
// present in migrated.
func keptIfPresent(marker, original, migrated string) bool {
	if !strings.Contains(original, marker) {
		return true
	}
	return strings.Contains(migrated, marker)
}

// goneIfPresent reports whether marker, when present in original, is absent
// from migrated.
func goneIfPresent(marker, original, migrated string) bool {
	if !strings.Contains(original, marker) {
		return true
	}
	return !strings.Contains(migrated, marker)
}
