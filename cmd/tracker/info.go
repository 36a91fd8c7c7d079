package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/stock-tracker/tracker/internal/config"
	"github.com/stock-tracker/tracker/internal/version"
	"github.com/stock-tracker/tracker/pkg/marketdata"
)

const (
	schemaFileName = "tracker-config.json"
	sampleFileName = "tracker.yaml"
)

func providersCommand() *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "List the market data providers",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			out := cmd.Root().Writer
			infos := marketdata.GetAllProviderInfo()

			if cmd.Bool("json") {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(infos)
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("NAME", "DISPLAY NAME", "AUTH", "ENV", "DESCRIPTION")

			for _, info := range infos {
				auth := "no"
				if info.RequiresAuth {
					auth = "yes"
				}

				t.Row(info.Name, info.DisplayName, auth, strings.Join(info.EnvVars, ", "), info.Description)
			}

			_, err := fmt.Fprintln(out, t.Render())

			return err
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the config file, or write it with a sample config",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "write " + schemaFileName + " and a sample " + sampleFileName + " into `DIR`"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			schemaJSON, err := config.GenerateSchemaJSON()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}

			dir := cmd.String("dir")
			if dir == "" {
				_, err := fmt.Fprintln(cmd.Root().Writer, schemaJSON)

				return err
			}

			return writeSchemaFiles(dir, schemaJSON)
		},
	}
}

// writeSchemaFiles writes the schema and, when missing, a sample config pointing at it.
func writeSchemaFiles(dir, schemaJSON string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, schemaFileName), []byte(schemaJSON), 0o644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}

	samplePath := filepath.Join(dir, sampleFileName)
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	sample := config.Default()
	sample.Version = version.GetVersion()
	sample.Symbols = []string{"AAPL", "MSFT"}
	sample.StartDate = "2024-01-01"
	sample.EndDate = "2024-06-30"
	sample.OutputFolder = "output"

	yamlBytes, err := yaml.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}

	yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaFileName+"\n"), yamlBytes...)

	if err := os.WriteFile(samplePath, yamlBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write sample config: %w", err)
	}

	return nil
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "tracker %s\n", version.GetVersion())

			return err
		},
	}
}
