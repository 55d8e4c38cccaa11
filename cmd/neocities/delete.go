package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// deleteAllWait is the pause before a --all delete starts removing files.
const deleteAllWait = 2 * time.Second

var errNothingToDelete = errors.New("nothing to delete: use --all or --file")

var (
	deleteAll   bool
	deleteFiles []string
	deleteYes   bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete [path...]",
	Short: "Delete files on your Neocities site",
	Long: `Delete files on your Neocities site.

With --all every file except index.html is deleted and index.html is reset
to the default page.

Examples:
  neocities delete -f old.html
  neocities delete -f img/a.png -f img/b.png -y
  neocities delete --all`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteAll, "all", "A", false, "delete all files on your Neocities site")
	deleteCmd.Flags().StringArrayVarP(&deleteFiles, "file", "f", nil, "file path to delete")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "automatically answer 'yes' to all questions")
}

func runDelete(cmd *cobra.Command, args []string) error {
	files := make([]string, 0, len(deleteFiles)+len(args))
	files = append(files, deleteFiles...)
	files = append(files, args...)

	if !deleteAll && len(files) == 0 {
		return errNothingToDelete
	}

	label := fmt.Sprintf("Delete %d files. Do you want to continue", len(files))
	if deleteAll {
		label = "Delete ALL files. Do you want to continue"
	}
	if !deleteYes && !confirm(label) {
		fmt.Println("Cancelled.")
		return nil
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	formatter := getFormatter()

	if deleteAll {
		resp, err := client.DeleteAll(cmd.Context(), deleteAllWait)
		if err != nil {
			return handleError(os.Stderr, err)
		}
		return formatter.FormatResponse(os.Stdout, "Delete all", resp)
	}

	resp, err := client.DeleteFiles(cmd.Context(), files)
	if err != nil {
		return handleError(os.Stderr, err)
	}
	return formatter.FormatResponse(os.Stdout, "Delete", resp)
}

// confirm asks a yes/no question; anything but yes is a no.
func confirm(label string) bool {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err == nil
}
