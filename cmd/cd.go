package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/securevault/securevault/internal/ui"
	"github.com/securevault/securevault/internal/workflows"
)

var cdCmd = &cobra.Command{
	Use:   "cd <folder>",
	Short: "Changes the current folder",
	Long: `Changes the current folder. Accepts an absolute path, a path relative to
the current folder, or ".." for the parent. The current folder is remembered
between commands.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting cd command")
		spinner, cleanup := startSpinner("Changing folder...", verbose)
		defer cleanup()

		result, err := workflows.ChangeDir(context.Background(), workflows.ChangeDirOptions{
			Path:      args[0],
			StorePath: storePath,
		})
		if err != nil {
			return finishWithError(spinner, err)
		}

		spinner.FinalMSG = ui.Arrow() + " " + ui.Path.Sprint(result.Path)
		return nil
	},
}

var favCmd = &cobra.Command{
	Use:   "fav <id>",
	Short: "Toggles the favorite mark of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting fav command")
		spinner, cleanup := startSpinner("Updating favorite...", verbose)
		defer cleanup()

		result, err := workflows.Favorite(context.Background(), workflows.FavoriteOptions{
			ID:        args[0],
			StorePath: storePath,
		})
		if err != nil {
			return finishWithError(spinner, err)
		}

		if result.Favorited {
			spinner.FinalMSG = ui.CheckMark() + " " + result.Item.Name + " marked as " + ui.Favorite.Sprint("fav")
		} else {
			spinner.FinalMSG = ui.CheckMark() + " " + result.Item.Name + " is no longer a favorite"
		}
		return nil
	},
}
