package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edutate/vanessa/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportFormat string

// exportDoc is the shape written by `vanessa export`.
type exportDoc struct {
	User   string         `json:"user"`
	Plan   models.Plan    `json:"plan"`
	Events []models.Event `json:"events"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print your plan and events as JSON or YAML",
	Example: `  vanessa export > plan.json
  vanessa export --format yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app) error {
			doc := exportDoc{User: a.session.User(), Plan: a.session.Plan(), Events: a.session.Events()}
			out, err := encodeExport(doc, exportFormat)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		})
	},
}

// encodeExport renders doc in the requested format. YAML is produced from
// the JSON form so both formats share field names and ordering.
func encodeExport(doc exportDoc, format string) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	switch format {
	case "", "json":
		return append(data, '\n'), nil
	case "yaml", "yml":
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("convert export: %w", err)
		}
		clearStyle(&node)
		return yaml.Marshal(&node)
	default:
		return nil, fmt.Errorf("unknown format %q (use json or yaml)", format)
	}
}

// clearStyle drops the flow style JSON input leaves on every node.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format: json or yaml")
	rootCmd.AddCommand(exportCmd)
}
