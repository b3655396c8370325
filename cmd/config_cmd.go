package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/edutate/vanessa/internal/config"
	"github.com/edutate/vanessa/internal/llm"
	"github.com/edutate/vanessa/internal/telemetry"
	"github.com/edutate/vanessa/internal/ui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change Vanessa settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		llmCfg, err := config.LoadLLMConfig()
		if err != nil {
			return err
		}

		file := viper.ConfigFileUsed()
		if file == "" {
			file = "(none)"
		}
		tbl := &ui.Table{Headers: []string{"Setting", "Value"}, MaxWidth: max(ui.TerminalWidth(100)-26, 24)}
		tbl.Rows = [][]string{
			{"config file", file},
			{"llm.provider", string(llmCfg.Provider)},
			{"llm.model", llmCfg.Model},
			{"llm.apiKey", maskKey(llmCfg.APIKey)},
			{"storage.driver", cfg.Storage.Driver},
			{"storage.path", cfg.Storage.Path},
			{"reconcile.maxAttempts", strconv.Itoa(config.ReconcilerConfig(cfg).MaxAttempts)},
			{"server.addr", cfg.Server.Addr},
			{"server.origins", strings.Join(cfg.Server.Origins, ", ")},
			{"telemetry.enabled", strconv.FormatBool(cfg.Telemetry.Enabled)},
		}
		fmt.Fprint(cmd.OutOrStdout(), tbl.Render())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Save a setting to ~/.vanessa/config.yaml",
	Example: `  vanessa config set llm.provider openai
  vanessa config set llm.apiKeys.openai sk-...
  vanessa config set storage.driver sqlite`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if key == "llm.provider" {
			if _, err := llm.ParseProvider(value); err != nil {
				return err
			}
		}
		if err := config.SaveGlobalSetting(key, value); err != nil {
			return err
		}
		shown := value
		if strings.Contains(strings.ToLower(key), "key") {
			shown = maskKey(value)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", ui.StyleSuccess.Render("✓"), key, shown)
		return nil
	},
}

var configTelemetryCmd = &cobra.Command{
	Use:       "telemetry <on|off>",
	Short:     "Turn anonymous usage reporting on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var enabled bool
		switch args[0] {
		case "on":
			enabled = true
		case "off":
		default:
			return fmt.Errorf("expected on or off, got %q", args[0])
		}

		dir, err := config.GetGlobalConfigDir()
		if err != nil {
			return err
		}
		fsys := afero.NewOsFs()
		st, err := telemetry.LoadState(fsys, dir)
		if err != nil {
			return err
		}
		st.Enabled = enabled
		if err := st.Save(fsys, dir); err != nil {
			return err
		}
		if err := config.SaveGlobalSetting("telemetry.enabled", strconv.FormatBool(enabled)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Telemetry %s.\n", args[0])
		return nil
	},
}

// maskKey hides all but the last four characters of a secret.
func maskKey(key string) string {
	switch {
	case key == "":
		return ui.StyleSubtle.Render("(not set)")
	case len(key) <= 4:
		return "****"
	default:
		return "****" + key[len(key)-4:]
	}
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configTelemetryCmd)
	rootCmd.AddCommand(configCmd)
}
