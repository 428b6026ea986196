package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spring-migrate/boot3migrate/internal/config"
	"github.com/spring-migrate/boot3migrate/internal/llm"
	"github.com/spring-migrate/boot3migrate/internal/pipeline"
)

var (
	// Version information - set by build flags
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	// CLI flags
	configFile  string
	verbose     bool
	dryRun      bool
	maxWorkers  int
	reportFile  string
	projectPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "boot3migrate",
	Short: "Migrate a Spring Boot 2.7 project to Spring Boot 3.0",
	Long: `A command-line tool that migrates a Java/Maven project from Spring Boot 2.7
to Spring Boot 3.0.

The tool runs the OpenRewrite mechanical migration first, then detects code
shapes the recipes cannot handle (Spring Security configs, Hibernate 5 type
annotations, deprecated configuration properties), rewrites each with a
generation model under strict validation rules, and verifies the project
still compiles.`,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the full migration pipeline",
	Long: `Run the complete migration pipeline:

1. Analyze the project (file counts, Spring Boot version)
2. Apply the OpenRewrite Spring Boot 3 recipe
3. Detect and migrate hard patterns with the generation model
4. Verify the project compiles
5. Write a migration report

Every rewritten file keeps its pre-migration content in a sidecar backup.
Use --dry-run to preview detections without changing anything.`,
	RunE: runMigration,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the project without migrating",
	Long:  "Count Java files, read the Spring Boot version from pom.xml, and estimate migration complexity.",
	RunE:  runAnalyze,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Commands for managing configuration files and settings.",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	Long:  "Create a new configuration file with default settings and examples.",
	RunE:  initConfig,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and credentials",
	Long:  "Validate the configuration file, the project path, and the generation model credentials.",
	RunE:  validateConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version, commit, and build time of the application.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("boot3migrate version %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Built: %s\n", BuildTime)
	},
}

func init() {
	// Root command flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Migrate command flags
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview detections without making changes")
	migrateCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Concurrent generation calls (0 = use config)")
	migrateCmd.Flags().StringVar(&reportFile, "report", "", "Output file for the JSON migration report")
	migrateCmd.Flags().StringVar(&projectPath, "project-path", "", "Path to the Maven project (overrides config)")
	analyzeCmd.Flags().StringVar(&projectPath, "project-path", "", "Path to the Maven project (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
	configCmd.AddCommand(configInitCmd)
}

func runMigration(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfigWithOverrides()
	if err != nil {
		return err
	}

	logger.Info("Starting Spring Boot 2.7 -> 3.0 migration...")
	logger.Info("Project", "path", cfg.Project.Path)
	if cfg.Migration.DryRun {
		logger.Info("DRY RUN MODE - No changes will be made")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupts: stop dispatching new generation calls but let
	// in-flight ones finish and be recorded.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	var gen llm.Generator
	if !cfg.Migration.DryRun {
		gen, err = llm.NewGemini(ctx, cfg.Generator.APIKey, cfg.Generator.Model, logger)
		if err != nil {
			return fmt.Errorf("failed to create generation client: %w", err)
		}
	}

	driver := pipeline.NewDriver(cfg, gen, logger)
	result, err := driver.Run(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	reportPath := reportFile
	if reportPath == "" {
		reportPath = cfg.Migration.ReportPath
	}
	if reportPath == "" {
		reportPath = fmt.Sprintf("./reports/migration_report_%s.json", time.Now().Format("20060102_150405"))
	}
	if err := result.SaveJSON(reportPath); err != nil {
		logger.Warn("Failed to save report", "error", err)
	} else {
		logger.Info("Migration report saved", "path", reportPath)
	}

	fmt.Println()
	fmt.Println(result.Markdown())

	if !result.Success {
		return fmt.Errorf("migration finished with errors; see the report for details")
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	// Analysis needs no credentials; with an explicit project path the
	// config file is not consulted at all.
	path := projectPath
	if path == "" {
		cfg, err := loadConfigWithOverrides()
		if err != nil {
			return err
		}
		path = cfg.Project.Path
	}

	analysis := pipeline.Analyze(path, logger)
	fmt.Printf("Project: %s\n", analysis.ProjectName)
	fmt.Printf("Spring Boot version: %s\n", analysis.SpringBootVersion)
	fmt.Printf("Java files: %d\n", analysis.TotalJavaFiles)
	fmt.Printf("Estimated complexity: %s\n", analysis.EstimatedComplexity)
	return nil
}

func validateConfig(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info("Configuration file is valid")

	ctx := context.Background()
	if _, err := llm.NewGemini(ctx, cfg.Generator.APIKey, cfg.Generator.Model, logger); err != nil {
		return fmt.Errorf("generation client setup failed: %w", err)
	}

	logger.Info("✓ Generation client created")
	logger.Info("✓ Configuration is valid and ready for migration")

	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	configPath := configFile
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		logger.Warn("Configuration file already exists", "path", configPath)
		fmt.Print("Do you want to overwrite it? (y/N): ")
		var response string
		_, err := fmt.Scanln(&response)

		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if response != "y" && response != "Y" {
			logger.Info("Configuration initialization cancelled")
			return nil
		}
	}

	defaultConfig := createDefaultConfig()

	if err := config.SaveConfig(defaultConfig, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	logger.Info("✓ Configuration file created", "path", configPath)
	logger.Info("Please set the project path and your GEMINI_API_KEY before running a migration")

	return nil
}

func loadConfigWithOverrides() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override config with CLI flags
	if dryRun {
		cfg.Migration.DryRun = true
	}
	if maxWorkers > 0 {
		cfg.Migration.MaxWorkers = maxWorkers
	}
	if projectPath != "" {
		cfg.Project.Path = projectPath
	}
	return cfg, nil
}

func createDefaultConfig() *config.Config {
	return &config.Config{
		Project: config.ProjectConfig{
			Path: "./test-projects/spring-petclinic",
		},
		Generator: config.GeneratorConfig{
			Model: "gemini-2.0-flash",
		},
		Rewrite: config.RewriteConfig{
			PluginVersion:     "6.28.0",
			Recipe:            "org.openrewrite.java.spring.boot3.UpgradeSpringBoot_3_0",
			RecipeCoordinates: "org.openrewrite.recipe:rewrite-spring:RELEASE",
			TimeoutSeconds:    600,
		},
		Migration: config.MigrationConfig{
			MaxWorkers:            1,
			BackupSuffix:          ".bak",
			CompileTimeoutSeconds: 300,
		},
	}
}

func setupLogger() *slog.Logger {
	opts := &slog.HandlerOptions{}

	if verbose {
		opts.Level = slog.LevelDebug
	} else {
		opts.Level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	logger := slog.New(handler)

	return logger
}
