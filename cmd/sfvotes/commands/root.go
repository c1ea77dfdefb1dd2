package commands

import (
	"context"

	"sfvotes/internal/components/serviceutil"
	"sfvotes/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	dbPath     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sfvotes",
	Short: "sfvotes scrapes the roll call votes of the San Francisco Board of Supervisors into a sqlite database.",
	// errors are logged once by Execute
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a json5 config file, sfvotes.json5 is searched for from the working directory upwards by default.")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the sqlite database, overrides database.file and database.url of the config.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug information.")
}

func Execute() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		serviceutil.Fatal("sfvotes failed", err)
	}
}
