package patterns

import (
	"strings"

	"github.com/spring-migrate/boot3migrate/internal/models"
	"github.com/spring-migrate/boot3migrate/internal/rules"
)

var securityPrompt = loadPrompt("security_filterchain.txt")

// SecurityMigrator rewrites WebSecurityConfigurerAdapter classes into the
// SecurityFilterChain bean style.
type SecurityMigrator struct{}

func (m *SecurityMigrator) Kind() models.PatternKind { return models.PatternSecurityConfig }

func (m *SecurityMigrator) Prompt(task *models.MigrationTask) string {
	return strings.ReplaceAll(securityPrompt, "{original_code}", task.OriginalText)
}

func (m *SecurityMigrator) MaxOutputTokens() int { return codeMaxOutputTokens }

func (m *SecurityMigrator) Rules() []rules.Rule { return rules.SecurityRules() }

func (m *SecurityMigrator) ChecksSyntax() bool { return true }
