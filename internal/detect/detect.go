// Package detect decides whether a file exhibits a given pattern kind.
// Detection is a pure function over the file content: the same input always
// yields the same match result.
package detect

import (
	"path/filepath"
	"strings"

	"github.com/spring-migrate/boot3migrate/internal/javaquery"
	"github.com/spring-migrate/boot3migrate/internal/models"
)

// securityBaseClass is the Boot 2.x security config base type removed in
// Spring Security 6.
const securityBaseClass = "WebSecurityConfigurerAdapter"

// deprecatedDialects are Hibernate 5 dialect class names dropped in
// Hibernate 6. They appear both in Java sources and in config values.
var deprecatedDialects = []string{
	"MySQL5Dialect",
	"MySQL5InnoDBDialect",
	"MySQL8Dialect",
	"PostgreSQL9Dialect",
	"PostgreSQL95Dialect",
	"PostgreSQL10Dialect",
	"Oracle12cDialect",
	"SQLServer2012Dialect",
}

// deprecatedPropertyMarkers are Boot 2.x property prefixes/keys that signal
// a config file needs migration.
var deprecatedPropertyMarkers = []string{
	"spring.redis.",
	"spring.jpa.hibernate.use-new-id-generator-mappings",
	"server.max-http-header-size",
	"spring.elasticsearch.rest.",
	"spring.config.use-legacy-processing",
	"spring.flyway.ignore-future-migrations",
	"management.metrics.export.",
	"spring.security.oauth2.resourceserver.jwt.jws-algorithm=",
}

// configFilePatterns are the file names scanned for deprecated properties.
var configFilePatterns = []string{
	"application.properties",
	"application.yml",
	"application.yaml",
	"application-*.properties",
	"application-*.yml",
	"application-*.yaml",
}

// Detect reports whether the file at path with the given content exhibits
// kind. A nil result means no match; a structural parse failure is treated
// as no match.
func Detect(kind models.PatternKind, path string, content []byte) *models.MatchInfo {
	switch kind {
	case models.PatternSecurityConfig:
		return detectSecurity(content)
	case models.PatternHibernate:
		return detectHibernate(path, content)
	case models.PatternConfigProperties:
		return detectConfigProperties(path, content)
	default:
		return nil
	}
}

// IsJavaFile reports whether path names a Java source file.
func IsJavaFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".java")
}

// IsConfigCandidate reports whether path names an application config file
// worth scanning for deprecated properties.
func IsConfigCandidate(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range configFilePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func detectSecurity(content []byte) *models.MatchInfo {
	spans := javaquery.ClassesExtending(content, securityBaseClass)
	if len(spans) == 0 {
		return nil
	}
	return &models.MatchInfo{
		Kind:  models.PatternSecurityConfig,
		Label: "class extends " + securityBaseClass,
		Spans: spans,
	}
}

func detectHibernate(path string, content []byte) *models.MatchInfo {
	if !IsJavaFile(path) {
		return nil
	}

	if spans := javaquery.Annotations(content, "Type", true); len(spans) > 0 {
		return &models.MatchInfo{
			Kind:  models.PatternHibernate,
			Label: "@Type(type = ...) annotation",
			Spans: spans,
		}
	}
	for _, name := range []string{"TypeDef", "TypeDefs"} {
		if spans := javaquery.Annotations(content, name, false); len(spans) > 0 {
			return &models.MatchInfo{
				Kind:  models.PatternHibernate,
				Label: "@" + name + " annotation",
				Spans: spans,
			}
		}
	}

	// Dialect class names legitimately appear inside string literals
	// (hibernate.dialect values in Java config), so this check is a plain
	// substring scan on purpose.
	text := string(content)
	for _, dialect := range deprecatedDialects {
		if strings.Contains(text, dialect) {
			return &models.MatchInfo{
				Kind:  models.PatternHibernate,
				Label: "deprecated dialect " + dialect,
			}
		}
	}
	return nil
}

func detectConfigProperties(path string, content []byte) *models.MatchInfo {
	if !IsConfigCandidate(path) {
		return nil
	}
	text := string(content)
	for _, marker := range append(append([]string{}, deprecatedPropertyMarkers...), deprecatedDialects...) {
		if strings.Contains(text, marker) {
			return &models.MatchInfo{
				Kind:  models.PatternConfigProperties,
				Label: "deprecated property " + marker,
			}
		}
	}
	return nil
}
