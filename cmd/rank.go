package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/priorank/priorank-cli/api/schemas"
	"github.com/priorank/priorank-cli/internal/config"
	"github.com/priorank/priorank-cli/internal/criteria"
	"github.com/priorank/priorank-cli/internal/dataset"
	"github.com/priorank/priorank-cli/internal/engine"
	"github.com/priorank/priorank-cli/internal/observability"
	"github.com/priorank/priorank-cli/internal/reporting"
)

// newRankCmd creates the `rank` command: the full scoring pipeline from
// criteria config and dataset files to a ranked report.
func newRankCmd() *cobra.Command {
	rankCmd := &cobra.Command{
		Use:   "rank",
		Short: "Scores and ranks the disease population by composite priority",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags onto their viper keys so CLI values override the
			// config file and environment with the right precedence.
			if err := viper.BindPFlag("dataset.diseases", cmd.Flags().Lookup("diseases")); err != nil {
				return err
			}
			if err := viper.BindPFlag("dataset.raw_values", cmd.Flags().Lookup("values")); err != nil {
				return err
			}
			if err := viper.BindPFlag("output.path", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			if err := viper.BindPFlag("output.format", cmd.Flags().Lookup("format")); err != nil {
				return err
			}
			if err := viper.BindPFlag("output.top", cmd.Flags().Lookup("top")); err != nil {
				return err
			}
			return viper.BindPFlag("engine.worker_concurrency", cmd.Flags().Lookup("concurrency"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			// Compile the criteria spec first: a configuration error must
			// abort before any scoring begins. The section is read verbatim
			// from the config file; see criteria.LoadFile.
			cfgFileUsed := viper.ConfigFileUsed()
			if cfgFileUsed == "" {
				return fmt.Errorf("no config file found; the criteria section is required to rank")
			}
			spec, err := criteria.LoadFile(cfgFileUsed)
			if err != nil {
				return fmt.Errorf("criteria configuration invalid: %w", err)
			}

			if cfg.Dataset.Diseases == "" || cfg.Dataset.RawValues == "" {
				return fmt.Errorf("dataset.diseases and dataset.raw_values must be configured")
			}

			diseases, err := dataset.LoadDiseases(cfg.Dataset.Diseases)
			if err != nil {
				return err
			}
			values, err := dataset.LoadRawValues(cfg.Dataset.RawValues)
			if err != nil {
				return err
			}
			values = dataset.ApplyMocks(values, diseases, spec)

			logger.Info("Dataset loaded",
				zap.Int("diseases", len(diseases)),
				zap.Strings("criteria", spec.Names()),
			)

			eng, err := engine.New(spec, logger, cfg.Engine.WorkerConcurrency)
			if err != nil {
				return fmt.Errorf("failed to create engine: %w", err)
			}
			results, err := eng.Rank(ctx, diseases, values)
			if err != nil {
				return fmt.Errorf("ranking failed: %w", err)
			}

			envelope := &schemas.RankingEnvelope{
				RunID:       uuid.NewString(),
				GeneratedAt: time.Now().UTC(),
				Criteria:    spec.Names(),
				Results:     results,
			}
			if cfg.Output.Top > 0 && cfg.Output.Top < len(envelope.Results) {
				envelope.Results = envelope.Results[:cfg.Output.Top]
			}

			reporter, err := reporting.New(cfg.Output.Format, cfg.Output.Path, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize reporter: %w", err)
			}
			defer func() {
				if err := reporter.Close(); err != nil {
					logger.Error("Failed to close reporter", zap.Error(err))
				}
			}()
			if err := reporter.Write(envelope); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			logger.Info("Ranking complete",
				zap.String("run_id", envelope.RunID),
				zap.Int("ranked", len(results)),
				zap.Int("reported", len(envelope.Results)),
				zap.String("format", cfg.Output.Format),
			)
			return nil
		},
	}

	rankCmd.Flags().String("diseases", "", "Path to the curated disease list (JSON). (Overrides config/env)")
	rankCmd.Flags().String("values", "", "Path to the raw criterion values document (JSON). (Overrides config/env)")
	rankCmd.Flags().StringP("output", "o", "", "Output file path for the report. Defaults to stdout.")
	rankCmd.Flags().StringP("format", "f", "csv", "Report format ('csv' or 'json'). (Overrides config/env)")
	rankCmd.Flags().IntP("top", "n", 0, "Report only the N highest-ranked diseases. 0 reports all.")
	rankCmd.Flags().IntP("concurrency", "j", 0, "Evaluation worker pool size. (Overrides config/env)")

	return rankCmd
}

func init() {
	rootCmd.AddCommand(newRankCmd())
}
