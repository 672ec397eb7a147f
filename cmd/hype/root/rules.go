package root

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hypeos/internal/config"
)

func newRulesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective scoring rules as YAML",
		Long:  "Prints the rule tables in use. The output is a valid rules file and can be edited and passed back via HYPE_RULES.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			rules, err := config.LoadRules(cfg.Rules.Path)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(rules); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
