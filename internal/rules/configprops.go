package rules

import "strings"

// propertyRename is a Boot 2.x key prefix and the Boot 3.x prefix that must
// replace it.
type propertyRename struct {
	old string
	new string
}

var propertyRenames = []struct {
	name   string
	rename propertyRename
}{
	{"redis_prefix_renamed", propertyRename{"spring.redis.", "spring.data.redis."}},
	{"elasticsearch_rest_renamed", propertyRename{"spring.elasticsearch.rest.", "spring.elasticsearch."}},
	{"header_size_renamed", propertyRename{"server.max-http-header-size", "server.max-http-request-header-size"}},
}

// removedProperties have no Boot 3.x equivalent and must simply disappear.
var removedProperties = []string{
	"use-new-id-generator-mappings",
	"use-legacy-processing",
}

// ConfigPropertiesRules validates an application.properties / application.yml
// migration from Boot 2.x to 3.x keys.
func ConfigPropertiesRules() []Rule {
	ruleset := make([]Rule, 0, len(propertyRenames)+4)
	for _, entry := range propertyRenames {
		rename := entry.rename
		ruleset = append(ruleset, Rule{
			Name: entry.name,
			Check: func(original, migrated string) bool {
				if !strings.Contains(original, rename.old) {
					return true
				}
				// Either the old key is gone or the new key arrived
				// alongside it (YAML restructuring can keep the old leaf
				// visible inside an unrelated tree).
				return !strings.Contains(migrated, rename.old) ||
					strings.Contains(migrated, rename.new)
			},
		})
	}

	ruleset = append(ruleset,
		Rule{
			Name: "removed_properties_dropped",
			Check: func(original, migrated string) bool {
				for _, key := range removedProperties {
					if !goneIfPresent(key, original, migrated) {
						return false
					}
				}
				return true
			},
		},
		Rule{
			Name: "metrics_export_renamed",
			Check: func(original, migrated string) bool {
				return goneIfPresent("management.metrics.export.", original, migrated)
			},
		},
		Rule{
			Name:  "dialects_updated",
			Check: dialectsUpdated,
		},
		Rule{
			Name: "custom_properties_preserved",
			Check: func(original, migrated string) bool {
				hadCustom := strings.Contains(original, "app.") || strings.Contains(original, "app:")
				if !hadCustom {
					return true
				}
				return strings.Contains(migrated, "app")
			},
		},
	)
	return ruleset
}
