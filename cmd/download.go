package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/securevault/securevault/internal/ui"
	"github.com/securevault/securevault/internal/vault"
	"github.com/securevault/securevault/internal/workflows"
)

var (
	downloadOutput string
	downloadForce  bool
)

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", `output path, "-" for stdout (default: the file name)`)
	downloadCmd.Flags().BoolVarP(&downloadForce, "force", "f", false, "overwrite an existing output file")
}

func resetDownloadCommandState() {
	downloadOutput = ""
	downloadForce = false
}

var downloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Decrypts a file from the vault",
	Long: `Decrypts a vault file and writes it to disk.

The id may be shortened to any unique prefix, as shown by 'securevault ls'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting download command")

		opts := workflows.DownloadOptions{
			ID:         args[0],
			OutputPath: downloadOutput,
			Force:      downloadForce,
			StorePath:  storePath,
		}

		if downloadOutput == "-" {
			result, err := workflows.Download(context.Background(), opts)
			if err != nil {
				Logger.Errorf("%v", err)
				_, _ = os.Stderr.WriteString(ui.EnsureNewline(formatError(err)))
				if isUnexpectedError(err) {
					return err
				}
				return nil
			}
			_, err = os.Stdout.Write(result.Data)
			return err
		}

		spinner, cleanup := startSpinner("Decrypting file...", verbose)
		defer cleanup()

		result, err := workflows.Download(context.Background(), opts)
		if err != nil {
			return finishWithError(spinner, err)
		}

		spinner.FinalMSG = ui.CheckMark() + " Decrypted " + result.Item.Name + " " +
			ui.Muted.Sprint(vault.FormatFileSize(result.Item.Size)) + "\n" +
			ui.Arrow() + " Written to " + ui.Path.Sprint(result.OutputPath)
		return nil
	},
}
