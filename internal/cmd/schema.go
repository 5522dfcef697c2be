package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kunkun/tpsgen/internal/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON config schema with defaults filled in",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := config.DefaultSpec()
		spec.Name = "example-test"
		spec.TargetServiceUrl = "http://localhost:8080"
		spec.TestDuration = 60 * time.Second
		spec.TrafficPattern = config.TrafficPatternSpec{Type: "stable", TargetTps: 100}
		spec.RequestTemplates = []config.RequestTemplateSpec{
			{Name: "ping", Weight: 1, Method: "GET", URLTemplate: "/ping"},
		}

		out, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling schema: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
