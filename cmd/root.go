package cmd

import (
	logger "github.com/securevault/securevault/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose   bool
	debug     bool
	storePath string
	Logger    logger.Logger

	RootCmd = &cobra.Command{
		Use:   "securevault",
		Short: "SecureVault - an encrypted file vault",
		Long: `SecureVault encrypts files with AES-256-GCM before storing them and keeps
them in a folder tree with search, sorting and favorites.

Usage:
  securevault <command> [flags]

Run 'securevault help <command>' for more details on a specific command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVar(&storePath, "store", "", "vault store directory (overrides config and SECUREVAULT_STORE)")

	RootCmd.AddCommand(uploadCmd)
	RootCmd.AddCommand(downloadCmd)
	RootCmd.AddCommand(previewCmd)
	RootCmd.AddCommand(lsCmd)
	RootCmd.AddCommand(mkdirCmd)
	RootCmd.AddCommand(rmCmd)
	RootCmd.AddCommand(cdCmd)
	RootCmd.AddCommand(favCmd)
	RootCmd.AddCommand(logCmd)
	RootCmd.AddCommand(keysCmd)
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// Helper functions for testing

// ResetGlobalState resets all global flag variables to their defaults.
func ResetGlobalState() {
	verbose = false
	debug = false
	storePath = ""
	resetUploadCommandState()
	resetDownloadCommandState()
	resetLsCommandState()
	resetLogCommandState()
	resetKeysCommandState()
	resetFlagState(RootCmd)
}

// resetFlagState clears the Changed marks left on every command's flags by a
// previous run so tests do not pollute each other.
func resetFlagState(c *cobra.Command) {
	unmark := func(flag *pflag.Flag) {
		flag.Changed = false
	}
	c.Flags().VisitAll(unmark)
	c.PersistentFlags().VisitAll(unmark)
	for _, sub := range c.Commands() {
		resetFlagState(sub)
	}
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
