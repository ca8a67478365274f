package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/securevault/securevault/internal/ui"
	"github.com/securevault/securevault/internal/utils"
	"github.com/securevault/securevault/internal/workflows"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Deletes files and folders",
	Long: `Deletes files of the current folder and folders anywhere in the vault.
A deleted folder takes all of its subfolders and files with it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting rm command")
		spinner, cleanup := startSpinner("Deleting...", verbose)
		defer cleanup()

		result, err := workflows.Delete(context.Background(), workflows.DeleteOptions{
			IDs:       args,
			StorePath: storePath,
		})
		if err != nil {
			return finishWithError(spinner, err)
		}

		msg := ui.CheckMark() + fmt.Sprintf(" Deleted %d folder(s) and %d file(s)", len(result.Folders), len(result.Files))
		if len(result.Folders) > 0 {
			msg += utils.FormatPaths(result.Folders)
		}
		if result.BlobErr != nil {
			Logger.WarnfAlways("some encrypted payloads could not be removed: %v", result.BlobErr)
		}
		spinner.FinalMSG = msg
		return nil
	},
}
