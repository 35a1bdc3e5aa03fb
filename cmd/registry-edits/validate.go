package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/internal/progress"
)

type validateOutput struct {
	Summary     validateSummary      `json:"summary"`
	Corrections domain.CorrectionLog `json:"corrections,omitempty"`
	Records     []*domain.Record     `json:"records"`
}

type validateSummary struct {
	ValidationID string `json:"validation_id"`
	Input        int    `json:"input_records"`
	Retained     int    `json:"retained_records"`
	Invalid      int    `json:"invalid_records"`
	Corrections  int    `json:"corrections"`
}

func validateCmd() *cobra.Command {
	var (
		input         string
		output        string
		autocorrect   bool
		showProgress  bool
		failOnInvalid bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run all validation stages over a batch of records",
		Long: `Run the individual item, data combination and site-morphology checks over
a JSON array of records. Records whose topography matches no site-morphology
rule are left out of the output.`,
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

			steps := 3
			if autocorrect {
				steps++
			}
			notifiers := progress.Multi{progress.NewLogNotifier(logger)}
			var bar *progress.BarNotifier
			if showProgress {
				bar = progress.NewBarNotifier(os.Stderr, steps)
				notifiers = progress.Multi{bar}
			}

			pipeline, err := newPipeline(registry, notifiers)
			if err != nil {
				return err
			}

			jobID := uuid.New().String()
			result := validateOutput{Summary: validateSummary{ValidationID: jobID, Input: len(records)}}

			if autocorrect {
				corrected, corrections, err := pipeline.AutoCorrect(ctx, jobID, records, configManager.GetConfig().Correction.Threshold)
				if err != nil {
					return err
				}
				records = corrected
				result.Corrections = corrections
				result.Summary.Corrections = corrections.Total()
			}

			report, err := pipeline.Execute(ctx, jobID, records)
			if err != nil {
				return err
			}
			if bar != nil {
				_ = bar.Finish()
			}

			result.Records = report.Records
			result.Summary.Retained = report.Retained
			result.Summary.Invalid = report.Invalid

			logger.WithFields(logrus.Fields{
				"validation_id": jobID,
				"retained":      report.Retained,
				"invalid":       report.Invalid,
			}).Info("Validation finished")

			if err := writeJSON(output, result); err != nil {
				return err
			}
			if failOnInvalid && report.Invalid > 0 {
				return fmt.Errorf("%d of %d records failed validation", report.Invalid, report.Retained)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON file holding an array of records (- for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	cmd.Flags().BoolVar(&autocorrect, "autocorrect", false, "repair near-miss codes before validating")
	cmd.Flags().BoolVar(&showProgress, "progress", true, "show a progress bar on stderr")
	cmd.Flags().BoolVar(&failOnInvalid, "fail-on-invalid", false, "exit non-zero when any record is invalid")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
