package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/securevault/securevault/internal/ui"
	"github.com/securevault/securevault/internal/utils"
	"github.com/securevault/securevault/internal/vault"
	"github.com/securevault/securevault/internal/workflows"
)

var (
	lsSearch    string
	lsSort      string
	lsDirection string
	lsLong      bool
)

func init() {
	lsCmd.Flags().StringVarP(&lsSearch, "search", "s", "", "filter by name or file type")
	lsCmd.Flags().StringVar(&lsSort, "sort", "", "sort by name, size, date or type")
	lsCmd.Flags().StringVar(&lsDirection, "direction", "", "sort direction, asc or desc")
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "show details (list view)")
}

func resetLsCommandState() {
	lsSearch = ""
	lsSort = ""
	lsDirection = ""
	lsLong = false
}

var lsCmd = &cobra.Command{
	Use:   "ls [folder]",
	Short: "Lists the current folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting ls command")
		spinner, cleanup := startSpinner("Loading vault...", verbose)
		defer cleanup()

		opts := workflows.ListOptions{
			Search:    lsSearch,
			Sort:      lsSort,
			Direction: lsDirection,
			StorePath: storePath,
		}
		if len(args) == 1 {
			opts.Path = args[0]
		}

		result, err := workflows.List(context.Background(), opts)
		if err != nil {
			return finishWithError(spinner, err)
		}
		Logger.Debugf("Listing %s: %d folders, %d files", result.Path, len(result.Folders), len(result.Files))

		spinner.FinalMSG = formatListing(result, lsLong || (result.View.Type == "list" && result.View.ShowDetails))
		return nil
	},
}

// formatListing renders folders first, then files, one per line. long adds
// size, type and modification time columns.
func formatListing(result *workflows.ListResult, long bool) string {
	var b strings.Builder
	b.WriteString(ui.Path.Sprint(result.Path) + "\n")

	if len(result.Folders) == 0 && len(result.Files) == 0 {
		if lsSearch != "" {
			b.WriteString(ui.Muted.Sprint("no items match " + lsSearch))
		} else {
			b.WriteString(ui.Muted.Sprint("empty folder"))
		}
		return b.String()
	}

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	for _, folder := range result.Folders {
		if long {
			fmt.Fprintf(w, "%s\t%s/\t\tfolder\t\t\n", utils.ShortID(folder.ID), folder.Name)
		} else {
			fmt.Fprintf(w, "%s\t%s/\t\n", utils.ShortID(folder.ID), folder.Name)
		}
	}

	for _, item := range result.Files {
		// The marker goes last so its color codes do not skew column widths.
		marker := ""
		if item.Favorited {
			marker = ui.Favorite.Sprint("fav")
		}
		if long {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", utils.ShortID(item.ID), item.Name,
				vault.FormatFileSize(item.Size), item.Type, item.LastModified.Local().Format("2006-01-02 15:04"), marker)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\n", utils.ShortID(item.ID), item.Name, marker)
		}
	}

	_ = w.Flush()
	return b.String()
}
