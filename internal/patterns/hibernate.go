package patterns

import (
	"strings"

	"github.com/spring-migrate/boot3migrate/internal/models"
	"github.com/spring-migrate/boot3migrate/internal/rules"
)

var hibernatePrompt = loadPrompt("hibernate_six.txt")

// HibernateMigrator rewrites Hibernate 5 type annotations and dialect
// references for Hibernate 6.
type HibernateMigrator struct{}

func (m *HibernateMigrator) Kind() models.PatternKind { return models.PatternHibernate }

func (m *HibernateMigrator) Prompt(task *models.MigrationTask) string {
	return strings.ReplaceAll(hibernatePrompt, "{original_code}", task.OriginalText)
}

func (m *HibernateMigrator) MaxOutputTokens() int { return codeMaxOutputTokens }

func (m *HibernateMigrator) Rules() []rules.Rule { return rules.HibernateRules() }

func (m *HibernateMigrator) ChecksSyntax() bool { return true }
