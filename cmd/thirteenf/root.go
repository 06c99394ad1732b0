package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danthegoodman1/SEC13FHoldings/companies"
	"github.com/danthegoodman1/SEC13FHoldings/config"
	"github.com/danthegoodman1/SEC13FHoldings/downloader"
	"github.com/danthegoodman1/SEC13FHoldings/edgar"
	"github.com/danthegoodman1/SEC13FHoldings/scraper"
	"github.com/danthegoodman1/SEC13FHoldings/sink"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "thirteenf [cik]",
	Short: "Extract 13F holdings tables from SEC EDGAR",
	Long: `Finds the latest 13F filing of a filer and writes its holdings table.
With a CIK argument only that filer is processed and any error is fatal.
Without arguments every filer in the companies file ("Name: CIK" per line)
is processed; failures are reported and skipped.

Configuration comes from thirteenf.yaml and THIRTEENF_* environment variables.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load("")
		if err != nil {
			return err
		}
		setupLogging(cmd.ErrOrStderr(), cfg.Log.Level)
		return nil
	},
	RunE: runRoot,
}

func setupLogging(w io.Writer, level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func newDownloader() *downloader.Client {
	return downloader.New(downloader.Options{
		UserAgent:         cfg.EDGAR.UserAgent,
		Timeout:           cfg.EDGAR.Timeout,
		RequestsPerSecond: cfg.EDGAR.RequestsPerSecond,
	})
}

func runRoot(cmd *cobra.Command, args []string) error {
	// Argument errors are reported with usage; everything after is not.
	cmd.SilenceUsage = true
	ctx := cmd.Context()

	locator, err := edgar.NewLocator(newDownloader(), cfg.EDGAR.BaseURL)
	if err != nil {
		return err
	}

	out, err := sink.Open(ctx, sink.Options{
		Kind:        cfg.Output.Sink,
		DatabaseURL: cfg.Output.DatabaseURL,
		Dir:         cfg.Output.Dir,
		Stdout:      cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Error().Err(err).Msg("closing sink")
		}
	}()

	s := scraper.New(locator, out)

	if len(args) == 1 {
		_, err := s.Scrape(ctx, args[0])
		return err
	}

	list, err := companies.Load(cfg.CompaniesFile)
	if err != nil {
		return err
	}
	report := s.Batch(ctx, list)
	for _, f := range report.Failed {
		cmd.PrintErrf("failed %s (%s): %v\n", f.Company.Name, f.Company.CIK, f.Err)
	}
	return nil
}
