package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/mzzb-project/animerank/internal/config"
	"github.com/mzzb-project/animerank/internal/export"
	"github.com/mzzb-project/animerank/internal/pipeline"
	"github.com/mzzb-project/animerank/internal/report"
	"github.com/spf13/cobra"
)

func newRankCmd() *cobra.Command {
	var inputPath string
	var outputPath string
	var configPath string
	var parquetPath string
	var reportDir string
	var writeReport bool

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a rating workbook and write the styled result",
		Long: `Rank reads the input workbook, filters out entries marked with an exclusion
note or carrying no rating data, computes the weighted composite score and
competition ranks, and writes the result to a new workbook. The input file is
never modified.

Excluded rows pass through to the output unranked, in their original position.
Malformed numeric cells are treated as missing for that platform only and
reported as warnings.`,
		Example: `  # Rank the default workbook
  animerank rank --input mzzb.xlsx

  # Custom weights and markers from a config file, with a YAML run report
  animerank rank --input mzzb.xlsx --config animerank.yaml --report

  # Also export the ranked records for downstream analysis
  animerank rank --input mzzb.xlsx --parquet ranked.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv("ANIMERANK_CONFIG")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if outputPath == "" {
				outputPath = os.Getenv("ANIMERANK_OUTPUT")
			}
			if outputPath != "" {
				cfg.OutputPath = outputPath
			}

			res, err := pipeline.Process(inputPath, cfg)
			if err != nil {
				return err
			}

			fmt.Printf("Ranked %d of %d records (%d excluded) in %s\n",
				res.Eligible, res.Processed, res.Excluded, res.Elapsed.Round(time.Millisecond))
			fmt.Printf("Output written to: %s\n", res.OutputPath)

			if len(res.Warnings) > 0 {
				fmt.Printf("\n%d data warnings:\n", len(res.Warnings))
				for _, w := range res.Warnings {
					fmt.Printf("  - %s\n", w)
				}
			}

			if writeReport {
				path, err := report.Save(inputPath, cfg, res, reportDir)
				if err != nil {
					return err
				}
				fmt.Printf("Report saved to: %s\n", path)
			}
			if parquetPath != "" {
				if err := export.WriteParquet(parquetPath, res.Ranked); err != nil {
					return err
				}
				fmt.Printf("Parquet export saved to: %s\n", parquetPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "mzzb.xlsx", "Path to the input workbook")
	cmd.Flags().StringVar(&outputPath, "output", "", "Output workbook path (default: <input>_ranked.xlsx)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config with weights and exclusion markers")
	cmd.Flags().BoolVar(&writeReport, "report", false, "Write a YAML run report")
	cmd.Flags().StringVar(&reportDir, "report-dir", "reports", "Directory for YAML run reports")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "Also export ranked records to this Parquet file")

	return cmd
}
