package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/securevault/securevault/internal/ui"
	"github.com/securevault/securevault/internal/workflows"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <name>",
	Short: "Creates a folder in the current folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting mkdir command")
		spinner, cleanup := startSpinner("Creating folder...", verbose)
		defer cleanup()

		result, err := workflows.Mkdir(context.Background(), workflows.MkdirOptions{
			Name:      args[0],
			StorePath: storePath,
		})
		if err != nil {
			return finishWithError(spinner, err)
		}

		spinner.FinalMSG = ui.CheckMark() + " Created folder " + ui.Path.Sprint(result.Folder.Path)
		return nil
	},
}
