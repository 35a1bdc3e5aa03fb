package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cancer-registry-edits/internal/progress"
)

func autocorrectCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "autocorrect",
		Short: "Repair near-miss codes without validating",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			records, err := readRecords(input)
			if err != nil {
				return err
			}
			registry, err := loadRegistry(ctx)
			if err != nil {
				return err
			}
			pipeline, err := newPipeline(registry, progress.NewLogNotifier(logger))
			if err != nil {
				return err
			}

			threshold := configManager.GetConfig().Correction.Threshold
			corrected, corrections, err := pipeline.AutoCorrect(ctx, uuid.New().String(), records, threshold)
			if err != nil {
				return err
			}

			return writeJSON(output, map[string]interface{}{
				"corrected_data": corrected,
				"corrections":    corrections,
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON file holding an array of records (- for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
