package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hypeos/internal/ui"
)

const Version = "0.1.0"

// options are the persistent flags shared by every subcommand.
type options struct {
	configFile string
	dbPath     string
	userID     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "hype",
		Short:         "HypeOS: gamified productivity from the terminal",
		Long:          "HypeOS turns completed tasks into hype points, streaks, levels and daily quests.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "Config file (yaml)")
	pf.StringVar(&opts.dbPath, "db", "", "SQLite database path (default ~/.hypeos.db)")
	pf.StringVarP(&opts.userID, "user", "u", "", "Profile id (default from config)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine activity")

	cmd.AddCommand(
		newAddCmd(opts),
		newDoCmd(opts),
		newListCmd(opts),
		newRemoveCmd(opts),
		newStatusCmd(opts),
		newQuestsCmd(opts),
		newPointsCmd(opts),
		newGoalCmd(opts),
		newRulesCmd(opts),
		newBoardCmd(opts),
		newServeCmd(opts),
		newDBCmd(opts),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
