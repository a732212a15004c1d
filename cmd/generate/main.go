package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-catalyst/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-catalyst/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-catalyst/internal/regime"
	"github.com/rxtech-lab/argo-catalyst/internal/strategy"
	"gopkg.in/yaml.v3"
)

const (
	configDir        = "./config"
	engineSchemaName = "backtest-engine-v1-config.json"
	sampleConfigName = "backtest-config.yaml"
)

// sampleConfig is the layout of a run config file read by cmd/backtest.
type sampleConfig struct {
	Latency            string                `yaml:"latency"`
	Broker             commission_fee.Broker `yaml:"broker"`
	CommissionRate     float64               `yaml:"commission_rate"`
	StrategyAPIVersion string                `yaml:"strategy_api_version"`
	Strategy           strategy.Config       `yaml:"strategy"`
	Regime             regime.Config         `yaml:"regime"`
}

type schemaSource interface {
	GenerateSchemaJSON() (string, error)
}

func newSampleConfig() sampleConfig {
	config := engine.EmptyConfig()

	return sampleConfig{
		Latency:            config.Latency.String(),
		Broker:             config.Broker,
		CommissionRate:     config.CommissionRate,
		StrategyAPIVersion: config.StrategyAPIVersion,
		Strategy:           strategy.DefaultConfig(),
		Regime:             regime.DefaultConfig(),
	}
}

func main() {
	engineConfig := engine.EmptyConfig()

	schemas := map[string]schemaSource{
		engineSchemaName:       &engineConfig,
		"strategy-config.json": strategy.DefaultConfig(),
		"regime-config.json":    regime.DefaultConfig(),
	}

	for name, source := range schemas {
		if err := validateSchemaName(name); err != nil {
			log.Fatalf("Invalid schema name: %v", err)
		}

		schemaPath := filepath.Join(configDir, name)
		if err := generateSchemaFile(source, schemaPath); err != nil {
			log.Fatalf("Failed to generate schema: %v", err)
		}

		log.Printf("Schema successfully generated at %s", schemaPath)
	}

	sampleConfigPath := filepath.Join(configDir, sampleConfigName)
	if err := validatePaths(filepath.Join(configDir, engineSchemaName), sampleConfigPath); err != nil {
		log.Fatalf("Invalid output paths: %v", err)
	}

	if err := generateSampleConfig(newSampleConfig(), sampleConfigPath, engineSchemaName); err != nil {
		log.Fatalf("Failed to generate sample config: %v", err)
	}
}

func generateSchemaFile(source schemaSource, schemaPath string) error {
	schemaJSON, err := source.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(schemaPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0o644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

// generateSampleConfig writes config to samplePath unless the file
// already exists.
func generateSampleConfig(config sampleConfig, samplePath string, schemaName string) error {
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte(getSchemaReference(schemaName)), yamlBytes...)

	if err := os.MkdirAll(filepath.Dir(samplePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(samplePath, yamlBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	log.Printf("Sample config successfully generated at %s", samplePath)

	return nil
}

func validatePaths(schemaPath, sampleConfigPath string) error {
	if schemaPath == "" {
		return fmt.Errorf("schema path cannot be empty")
	}

	if sampleConfigPath == "" {
		return fmt.Errorf("sample config path cannot be empty")
	}

	return nil
}

func validateSchemaName(name string) error {
	if name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if !strings.HasSuffix(name, ".json") {
		return fmt.Errorf("schema name %q must have .json extension", name)
	}

	return nil
}

func getSchemaReference(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}
