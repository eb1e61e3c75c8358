package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-frvp/internal/analysis"
	"github.com/rxtech-lab/argo-frvp/internal/version"
	"github.com/rxtech-lab/argo-frvp/pkg/marketdata"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	schemaName         = "frvp-analysis-config.json"
	providerSchemaName = "frvp-provider-config.json"
	sampleConfigName   = "frvp-analysis-config.yaml"
)

// schemaAction writes the config schema and, when missing, a sample config
// pointing at it.
func schemaAction(_ context.Context, cmd *cli.Command) error {
	config := analysis.DefaultConfig()
	config.Version = version.GetVersion()
	dir := cmd.String("dir")

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	schemaPath := filepath.Join(dir, schemaName)
	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	fmt.Fprintf(cmd.Root().Writer, "Schema written to %s\n", schemaPath)

	providerSchema, err := marketdata.GetProviderConfigSchema()
	if err != nil {
		return fmt.Errorf("failed to generate provider schema: %w", err)
	}

	providerSchemaPath := filepath.Join(dir, providerSchemaName)
	if err := os.WriteFile(providerSchemaPath, []byte(providerSchema), 0644); err != nil {
		return fmt.Errorf("failed to write provider schema to file: %w", err)
	}

	fmt.Fprintf(cmd.Root().Writer, "Schema written to %s\n", providerSchemaPath)

	sampleConfigPath := filepath.Join(dir, sampleConfigName)
	if _, err := os.Stat(sampleConfigPath); !os.IsNotExist(err) {
		return nil
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaName+"\n"), yamlBytes...)

	if err := os.WriteFile(sampleConfigPath, yamlBytes, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	fmt.Fprintf(cmd.Root().Writer, "Sample config written to %s\n", sampleConfigPath)

	return nil
}
