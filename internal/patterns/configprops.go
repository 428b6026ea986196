package patterns

import (
	"path/filepath"
	"strings"

	"github.com/spring-migrate/boot3migrate/internal/models"
	"github.com/spring-migrate/boot3migrate/internal/rules"
)

var configPrompt = loadPrompt("config_properties.txt")

// ConfigPropertiesMigrator rewrites application.properties / application.yml
// files to Boot 3.x property names.
type ConfigPropertiesMigrator struct{}

func (m *ConfigPropertiesMigrator) Kind() models.PatternKind {
	return models.PatternConfigProperties
}

func (m *ConfigPropertiesMigrator) Prompt(task *models.MigrationTask) string {
	fileType := "properties"
	switch filepath.Ext(task.FilePath) {
	case ".yml", ".yaml":
		fileType = "YAML"
	}
	// Two independent literal replacements; the file content is substituted
	// last so nothing inside it is ever reinterpreted.
	prompt := strings.ReplaceAll(configPrompt, "{file_type}", fileType)
	return strings.ReplaceAll(prompt, "{original_content}", task.OriginalText)
}

func (m *ConfigPropertiesMigrator) MaxOutputTokens() int { return configMaxOutputTokens }

func (m *ConfigPropertiesMigrator) Rules() []rules.Rule { return rules.ConfigPropertiesRules() }

func (m *ConfigPropertiesMigrator) ChecksSyntax() bool { return false }
