package rules

import (
	"regexp"
	"strings"
)

var fieldDeclRe = regexp.MustCompile(`private\s+[\w<>\[\], ]+\s+(\w+)\s*[;=]`)

// dialectRenames maps Hibernate 5 dialect class names to their Hibernate 6
// replacements. Validation only asserts the deprecated name is gone; the
// replacement column documents the expected rewrite.
var dialectRenames = map[string]string{
	"MySQL5Dialect":        "MySQLDialect",
	"MySQL5InnoDBDialect":  "MySQLDialect",
	"MySQL8Dialect":        "MySQLDialect",
	"PostgreSQL9Dialect":   "PostgreSQLDialect",
	"PostgreSQL95Dialect":  "PostgreSQLDialect",
	"PostgreSQL10Dialect":  "PostgreSQLDialect",
	"Oracle12cDialect":     "OracleDialect",
	"SQLServer2012Dialect": "SQLServerDialect",
}

// HibernateRules validates a Hibernate 5 to 6 migration: string-based type
// annotations must be replaced, javax must become jakarta, and the entity
// structure must survive.
func HibernateRules() []Rule {
	return []Rule{
		{
			Name: "typedef_removed",
			Check: func(_, migrated string) bool {
				return !strings.Contains(migrated, "@TypeDef")
			},
		},
		{
			Name: "type_annotation_migrated",
			Check: func(original, migrated string) bool {
				return goneIfPresent("@Type(type", original, migrated)
			},
		},
		{
			Name: "jakarta_persistence",
			Check: func(original, migrated string) bool {
				return goneIfPresent("javax.persistence", original, migrated)
			},
		},
		{
			Name: "entity_preserved",
			Check: func(original, migrated string) bool {
				return keptIfPresent("@Entity", original, migrated)
			},
		},
		{
			Name: "fields_preserved",
			Check: func(original, migrated string) bool {
				want := extractSet(fieldDeclRe, original)
				for field := range want {
					if !strings.Contains(migrated, field) {
						return false
					}
				}
				return true
			},
		},
		{
			Name:  "json_type_converted",
			Check: jsonTypeConverted,
		},
		{
			Name:  "dialects_updated",
			Check: dialectsUpdated,
		},
	}
}

// jsonTypeConverted requires JSON column mappings to use the Hibernate 6
// @JdbcTypeCode(SqlTypes.JSON) form.
func jsonTypeConverted(original, migrated string) bool {
	hadJSON := strings.Contains(original, `@Type(type = "json")`) ||
		strings.Contains(original, `@Type(type = "jsonb")`)
	if !hadJSON {
		return true
	}
	return strings.Contains(migrated, "JdbcTypeCode") || strings.Contains(migrated, "SqlTypes")
}

func dialectsUpdated(original, migrated string) bool {
	for deprecated := range dialectRenames {
		if !goneIfPresent(deprecated, original, migrated) {
			return false
		}
	}
	return true
}
