// internal/cli/show.go
package llmeval

import (
	"github.com/spf13/cobra"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
)

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying resources",
	Long:  `The 'show' command groups subcommands that display information related to llmeval.`,
}

// showConfigCmd prints the merged configuration.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the config file is loaded properly and overridden by environment variables and flags accordingly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		file := ""
		if cfg != nil {
			file = cfg.ConfigPath
		}
		return appconfig.ShowConfig(cmd.OutOrStdout(), file, cfg)
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(showCmd)
}
