package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/securevault/securevault/internal/ui"
	"github.com/securevault/securevault/internal/workflows"
)

var previewCmd = &cobra.Command{
	Use:   "preview <id>",
	Short: "Decrypts an image, PDF, video or audio file for viewing",
	Long: `Decrypts a previewable file to a private temporary file and prints its
location and MIME type. Remove the file when you are done with it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting preview command")
		spinner, cleanup := startSpinner("Decrypting preview...", verbose)
		defer cleanup()

		result, err := workflows.Preview(context.Background(), workflows.PreviewOptions{
			ID:        args[0],
			StorePath: storePath,
		})
		if err != nil {
			return finishWithError(spinner, err)
		}

		spinner.FinalMSG = ui.CheckMark() + " " + result.Item.Name + " " + ui.Muted.Sprint(result.MIME) + "\n" +
			ui.Arrow() + " Preview written to " + ui.Path.Sprint(result.Path)
		return nil
	},
}
