package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/christopherseaman/narko/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Check files against the upload limits",
	Long: `Check that files exist, fit the size limit and carry an extension the
upload API accepts. Nothing is uploaded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	validator := validate.New(cfg)
	failed := 0
	for _, path := range args {
		result := validator.File(path)
		if result.Valid {
			cmd.Printf("ok    %s (%d bytes)\n", path, result.Size)
		} else {
			failed++
			cmd.Printf("fail  %s\n", path)
			for _, e := range result.Errors {
				cmd.Printf("        %s\n", e)
			}
		}
		for _, w := range result.Warnings {
			cmd.Printf("        warning: %s\n", w)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(args))
	}
	return nil
}
