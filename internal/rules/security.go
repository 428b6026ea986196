package rules

import (
	"regexp"
	"strings"
)

var (
	urlPatternRe    = regexp.MustCompile(`"(/[^"]*)"`)
	roleCheckRe     = regexp.MustCompile(`hasRole\("([^"]+)"\)`)
	authorityRe     = regexp.MustCompile(`hasAuthority\("([^"]+)"\)`)
	accessDecisions = []string{"permitAll", "denyAll", "authenticated", "anonymous"}
	securityChains  = []string{"formLogin", "logout", "csrf", "cors", "httpBasic"}
)

// SecurityRules validates a Spring Security 5 to 6 config migration: the
// deprecated adapter style must be gone, the SecurityFilterChain bean style
// must be present, and no authorization rule may be silently dropped.
func SecurityRules() []Rule {
	return []Rule{
		{
			Name: "no_websecurityconfigureradapter",
			Check: func(_, migrated string) bool {
				return !strings.Contains(migrated, "extends WebSecurityConfigurerAdapter")
			},
		},
		{
			Name: "ant_matchers_converted",
			Check: func(_, migrated string) bool {
				return !strings.Contains(migrated, "antMatchers")
			},
		},
		{
			Name: "authorize_http_requests",
			Check: func(_, migrated string) bool {
				if !strings.Contains(migrated, "authorizeRequests()") {
					return true
				}
				return strings.Contains(migrated, "authorizeHttpRequests")
			},
		},
		{
			Name: "enable_method_security",
			Check: func(_, migrated string) bool {
				return !strings.Contains(migrated, "EnableGlobalMethodSecurity")
			},
		},
		{
			Name: "security_filter_chain_bean",
			Check: func(_, migrated string) bool {
				return strings.Contains(migrated, "@Bean") &&
					strings.Contains(migrated, "SecurityFilterChain")
			},
		},
		{
			Name: "returns_http_build",
			Check: func(_, migrated string) bool {
				return strings.Contains(migrated, "return http.build()")
			},
		},
		{
			Name: "no_and_chaining",
			Check: func(_, migrated string) bool {
				return !strings.Contains(migrated, ".and()")
			},
		},
		{
			Name: "preserves_url_patterns",
			Check: func(original, migrated string) bool {
				return preservesSet(urlPatternRe, original, migrated)
			},
		},
		{
			Name:  "preserves_all_authorization_rules",
			Check: preservesAuthorizationRules,
		},
		{
			Name: "preserves_security_features",
			Check: func(original, migrated string) bool {
				for _, feature := range securityChains {
					if !keptIfPresent(feature, original, migrated) {
						return false
					}
				}
				return true
			},
		},
	}
}

// preservesAuthorizationRules checks that every role check, authority check
// and access decision present in the original survives the rewrite.
func preservesAuthorizationRules(original, migrated string) bool {
	if !preservesSet(roleCheckRe, original, migrated) {
		return false
	}
	if !preservesSet(authorityRe, original, migrated) {
		return false
	}
	for _, decision := range accessDecisions {
		if !keptIfPresent(decision, original, migrated) {
			return false
		}
	}
	return true
}
