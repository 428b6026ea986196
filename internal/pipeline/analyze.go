package pipeline

import (
	"encoding/xml"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Analysis summarizes the project before migration.
type Analysis struct {
	ProjectName         string `json:"project_name"`
	SpringBootVersion   string `json:"current_spring_boot_version"`
	TotalJavaFiles      int    `json:"total_java_files"`
	EstimatedComplexity string `json:"estimated_complexity"`
}

// pomProject is the subset of pom.xml the analysis needs.
type pomProject struct {
	Name   string `xml:"name"`
	Parent struct {
		Version string `xml:"version"`
	} `xml:"parent"`
}

// Analyze counts Java files and reads the project name and parent Spring
// Boot version from pom.xml. Parse problems degrade to "unknown" rather
// than failing the run.
func Analyze(projectPath string, logger *slog.Logger) *Analysis {
	analysis := &Analysis{
		ProjectName:       "unknown",
		SpringBootVersion: "unknown",
	}

	_ = filepath.WalkDir(projectPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".java") {
			analysis.TotalJavaFiles++
		}
		return nil
	})

	pomPath := filepath.Join(projectPath, "pom.xml")
	if data, err := os.ReadFile(pomPath); err == nil {
		var pom pomProject
		if err := xml.Unmarshal(data, &pom); err != nil {
			logger.Warn("Failed to parse pom.xml", "error", err)
		} else {
			if name := strings.TrimSpace(pom.Name); name != "" {
				analysis.ProjectName = name
			}
			if version := strings.TrimSpace(pom.Parent.Version); version != "" {
				analysis.SpringBootVersion = version
			}
		}
	}

	switch {
	case analysis.TotalJavaFiles < 50:
		analysis.EstimatedComplexity = "low"
	case analysis.TotalJavaFiles <= 200:
		analysis.EstimatedComplexity = "medium"
	default:
		analysis.EstimatedComplexity = "high"
	}

	logger.Info("Project analyzed",
		"project", analysis.ProjectName,
		"java_files", analysis.TotalJavaFiles,
		"spring_boot", analysis.SpringBootVersion,
		"complexity", analysis.EstimatedComplexity)
	return analysis
}

func skipDir(name string) bool {
	return name == "target" || name == "node_modules" || strings.HasPrefix(name, ".")
}
