package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	verrors "github.com/securevault/securevault/internal/errors"
	"github.com/securevault/securevault/internal/ui"
	"github.com/securevault/securevault/internal/utils"
	"github.com/securevault/securevault/internal/vault"
	"github.com/securevault/securevault/internal/workflows"
)

var uploadFolder string

func init() {
	uploadCmd.Flags().StringVar(&uploadFolder, "to", "", "vault folder to upload into (default: current folder)")
}

func resetUploadCommandState() {
	uploadFolder = ""
}

var uploadCmd = &cobra.Command{
	Use:   "upload <path|dir|glob>...",
	Short: "Encrypts files into the vault",
	Long: `Encrypts local files with the vault key and stores them in the current folder.

Directories are uploaded recursively and glob patterns support **.
Each file is processed independently; a failed file does not stop the others.

Examples:
  securevault upload report.pdf
  securevault upload ./photos --to /pictures
  securevault upload "notes/**/*.md"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting upload command")
		spinner, cleanup := startSpinner("Encrypting files...", verbose)
		defer cleanup()

		result, err := workflows.Upload(context.Background(), workflows.UploadOptions{
			Patterns:  args,
			Folder:    uploadFolder,
			StorePath: storePath,
		})
		if err != nil {
			return finishWithError(spinner, err)
		}
		Logger.Infof("Uploaded %d files, %d failed", len(result.Uploaded), len(result.Failed))

		spinner.FinalMSG = formatUploadResult(result)
		if len(result.Failed) > 0 {
			return fmt.Errorf("%d of %d files failed to upload",
				len(result.Failed), len(result.Failed)+len(result.Uploaded))
		}
		return nil
	},
}

func formatUploadResult(result *workflows.UploadResult) string {
	var b strings.Builder

	if len(result.Uploaded) > 0 {
		b.WriteString(ui.CheckMark() + " Uploaded " + fmt.Sprint(len(result.Uploaded)) +
			" file(s) to " + ui.Path.Sprint(result.Folder) + "\n")
		for _, item := range result.Uploaded {
			b.WriteString(fmt.Sprintf("    %s %s %s\n",
				ui.Muted.Sprint(utils.ShortID(item.ID)), item.Name, ui.Muted.Sprint(vault.FormatFileSize(item.Size))))
		}
	}

	for _, failed := range result.Failed {
		b.WriteString(ui.CrossMark() + " " + ui.Path.Sprint(failed.Path) + ": " + verrors.UserMessage(failed.Err) + "\n")
		Logger.Debugf("upload of %s failed: %v", failed.Path, failed.Err)
	}

	return b.String()
}
