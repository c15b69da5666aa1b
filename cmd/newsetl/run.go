package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kalambet/newsetl/internal/config"
	"github.com/kalambet/newsetl/internal/news"
	"github.com/kalambet/newsetl/internal/pipeline"
	"github.com/kalambet/newsetl/internal/record"
	"github.com/kalambet/newsetl/internal/report"
	"github.com/kalambet/newsetl/internal/source"
	"github.com/kalambet/newsetl/internal/storage"
	"github.com/kalambet/newsetl/internal/usersapi"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once over the identity file",
	Long: `Run the pipeline once over the identity file.

Examples:
  newsetl run
  newsetl run --csv data/users_ids.csv --report out/report_etl.csv
  newsetl run --api-url http://127.0.0.1:8000 --no-ledger`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyRunFlags(cmd, &cfg)
		setupLogging(cfg.Log.SlogLevel())

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runPipeline(ctx, cfg)
	},
}

func init() {
	runCmd.Flags().String("csv", "", "identity file (overrides input.csv_path)")
	runCmd.Flags().String("report", "", "report path (overrides report.path)")
	runCmd.Flags().String("api-url", "", "record service base URL (overrides api.url)")
	runCmd.Flags().Bool("no-ledger", false, "do not record the run in the local ledger")
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("csv"); v != "" {
		cfg.Input.CSVPath = v
	}
	if v, _ := cmd.Flags().GetString("report"); v != "" {
		cfg.Report.Path = v
	}
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.API.URL = v
	}
	if v, _ := cmd.Flags().GetBool("no-ledger"); v {
		cfg.Storage.Ledger = false
	}
}

// runPipeline acquires the Gemini client for the duration of one run.
func runPipeline(ctx context.Context, cfg config.Config) error {
	if err := config.RequireAPIKey(cfg); err != nil {
		return err
	}

	gemini, err := news.NewGeminiClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		return err
	}
	defer gemini.Close()

	return executeRun(ctx, cfg, news.NewGenerator(gemini, cfg.Gemini.Model))
}

// executeRun wires the pipeline around gen and prints the outcome.
func executeRun(ctx context.Context, cfg config.Config, gen pipeline.NewsGenerator) error {
	printStatus("API_URL", "%s", cfg.API.URL)
	printStatus("CSV_PATH", "%s", cfg.Input.CSVPath)
	printStatus("GEMINI_MODEL", "%s", cfg.Gemini.Model)
	printSeparator()

	client := usersapi.NewClient(cfg.API.URL, cfg.API.Timeout())
	deps := pipeline.Deps{
		IDs:       source.File{Path: cfg.Input.CSVPath},
		Fetcher:   client,
		Generator: gen,
		Updater:   client,
		Report:    report.Writer{Path: cfg.Report.Path},
		IconURL:   cfg.News.IconURL,
		OnFetched: func(batch []*record.Record) {
			printStep("Usuários carregados da API (resumo):")
			fmt.Fprintln(stdout, renderPreview(batch, cfg.Report.WrapWidth))
			printSeparator()
		},
	}

	if cfg.Storage.Ledger {
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			printWarning("run ledger disabled: %v", err)
		} else {
			defer func() {
				if err := store.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "warning: closing ledger: %v\n", err)
				}
			}()
			deps.Ledger = store
		}
	}

	sum, err := pipeline.NewOrchestrator(deps).Run(ctx)
	if err != nil {
		return err
	}

	printSeparator()
	printSuccess("Atualizações concluídas: %s", sum)
	if sum.ReportErr != nil {
		printError("Relatório não gerado: %v", sum.ReportErr)
	} else {
		printSuccess("Abra o relatório no Excel: %s", cfg.Report.Path)
	}
	if deps.Ledger != nil {
		printStatus("Run", "%s", sum.RunID)
	}
	return nil
}
