package cmd

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dashvolt/grabbit-cli/api/schemas"
	"github.com/dashvolt/grabbit-cli/internal/config"
	"github.com/dashvolt/grabbit-cli/internal/observability"
	"github.com/dashvolt/grabbit-cli/internal/service"
)

// newFetchCmd creates and configures the `fetch` command.
func newFetchCmd() *cobra.Command {
	var jsonOutput bool

	fetchCmd := &cobra.Command{
		Use:   "fetch [urls...]",
		Short: "Acquire media artifacts for the given URLs",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so CLI values override config file and env.
			if err := viper.BindPFlag("engine.fetch_concurrency", cmd.Flags().Lookup("concurrency")); err != nil {
				return err
			}
			if err := viper.BindPFlag("engine.delivery_max_bytes", cmd.Flags().Lookup("max-bytes")); err != nil {
				return err
			}
			return viper.BindPFlag("engine.output_dir", cmd.Flags().Lookup("output-dir"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the signal-aware context passed down from main.
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			components, err := service.InitializeComponents(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize acquisition components: %w", err)
			}
			defer components.Shutdown()

			logger.Info("Starting batch fetch",
				zap.Int("urls", len(args)),
				zap.Int("concurrency", cfg.Engine.FetchConcurrency),
			)

			// One acquisition per URL, bounded parallelism across URLs.
			// Attempts inside each acquisition stay strictly sequential.
			results := make([]*schemas.Result, len(args))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(cfg.Engine.FetchConcurrency)
			for i, url := range args {
				i, url := i, url
				g.Go(func() error {
					results[i] = components.Acquirer.Acquire(gctx, url)
					return nil
				})
			}
			// Acquire never returns an error; the group exists for bounding
			// and context propagation.
			_ = g.Wait()

			if jsonOutput {
				return printJSON(results)
			}
			printSummaries(results)

			for _, r := range results {
				if r.Status != schemas.StatusSuccess {
					return fmt.Errorf("%d of %d acquisitions did not produce an artifact",
						countNonSuccess(results), len(results))
				}
			}
			return nil
		},
	}

	fetchCmd.Flags().Int("concurrency", 3, "maximum parallel acquisitions")
	fetchCmd.Flags().Int64("max-bytes", 50*1024*1024, "delivery size ceiling per artifact")
	fetchCmd.Flags().String("output-dir", "downloads", "directory artifacts are written to")
	fetchCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit full results as JSON on stdout")

	return fetchCmd
}

func printJSON(results []*schemas.Result) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func printSummaries(results []*schemas.Result) {
	for _, r := range results {
		switch r.Status {
		case schemas.StatusSuccess:
			fmt.Printf("ok    %s -> %s (%d bytes, %d attempts, %d downgrades)\n",
				r.URL, r.Artifact.LocalPath, r.Artifact.SizeBytes, r.AttemptsUsed(), r.QualityDowngrades)
		default:
			fmt.Printf("fail  %s [%s/%s] after %d attempts: %s\n",
				r.URL, r.Status, r.Kind, r.AttemptsUsed(), r.Summary)
		}
	}
}

func countNonSuccess(results []*schemas.Result) int {
	n := 0
	for _, r := range results {
		if r.Status != schemas.StatusSuccess {
			n++
		}
	}
	return n
}
