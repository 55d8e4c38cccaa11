package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sagarc03/neocities/clientcli"
	"github.com/spf13/cobra"
)

var errNothingToUpload = errors.New("nothing to upload: use --dir or --file")

var (
	uploadDir         string
	uploadDirOnServer string
	uploadFiles       []string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload local data to your Neocities site",
	Long: `Upload local data to your Neocities site.

A file is given as "local path" or "local path:path on server". Files whose
extension Neocities does not accept are skipped with a warning; run
'neocities extensions' for the list.

Examples:
  neocities upload -f index.html
  neocities upload -f build/about.html:about.html -f style.css
  neocities upload -d ./public
  neocities upload -d ./posts --dir-on-server blog`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadDir, "dir", "d", "", "local directory path")
	uploadCmd.Flags().StringVar(&uploadDirOnServer, "dir-on-server", "", "destination directory")
	uploadCmd.Flags().StringArrayVarP(&uploadFiles, "file", "f", nil, "(file path) or (local file path):(path on server)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	files := make([]string, 0, len(uploadFiles)+len(args))
	files = append(files, uploadFiles...)
	files = append(files, args...)

	mappings, err := parseFileMappings(files)
	if err != nil {
		return err
	}

	if uploadDir == "" && len(mappings) == 0 {
		return errNothingToUpload
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	formatter := getFormatter()

	if uploadDir != "" {
		resp, err := client.UploadDir(cmd.Context(), uploadDir, uploadDirOnServer)
		if err != nil {
			return handleError(os.Stderr, err)
		}
		if err := formatter.FormatResponse(os.Stdout, "Upload "+uploadDir, resp); err != nil {
			return err
		}
	}

	if len(mappings) == 0 {
		return nil
	}

	resp, err := client.UploadFiles(cmd.Context(), mappings)
	if err != nil {
		return handleError(os.Stderr, err)
	}
	return formatter.FormatResponse(os.Stdout, "Upload", resp)
}

// parseFileMappings splits "local" or "local:remote" values.
func parseFileMappings(values []string) ([]clientcli.FileMapping, error) {
	mappings := make([]clientcli.FileMapping, 0, len(values))
	for _, v := range values {
		parts := strings.Split(v, ":")
		switch len(parts) {
		case 1:
			mappings = append(mappings, clientcli.FileMapping{LocalPath: parts[0]})
		case 2:
			mappings = append(mappings, clientcli.FileMapping{LocalPath: parts[0], RemotePath: parts[1]})
		default:
			return nil, fmt.Errorf("invalid value %q for --file: expected local or local:remote", v)
		}
	}
	return mappings, nil
}
