package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload files to Notion without importing a document",
	Long: `Upload files through the file upload API and print their upload IDs.

The IDs can be attached to blocks later; repeated uploads of the same
content are served from the local cache. With --url the API fetches an
externally hosted file instead.

Examples:
  narko upload diagram.png report.pdf
  narko upload --url https://example.com/chart.png`,
	RunE: runUpload,
}

var uploadExternalURL string

func init() {
	uploadCmd.Flags().StringVar(&uploadExternalURL, "url", "", "import an externally hosted file by URL")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadExternalURL == "" && len(args) == 0 {
		return errors.New("nothing to upload, give file arguments or --url")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	uploader, closeCache := newUploader(cfg)
	defer closeCache()

	ctx := cmd.Context()
	if uploadExternalURL != "" {
		result, err := uploader.ImportExternal(ctx, uploadExternalURL, "")
		if err != nil {
			return err
		}
		cmd.Printf("%s: %s (%d bytes)\n", uploadExternalURL, result.FileID, result.Size)
	}

	for _, path := range args {
		result, err := uploader.UploadFile(ctx, path)
		if err != nil {
			return err
		}
		note := ""
		if result.FromCache {
			note = " (cached)"
		}
		cmd.Printf("%s: %s (%d bytes)%s\n", path, result.FileID, result.Size, note)
	}
	return nil
}
