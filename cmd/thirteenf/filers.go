package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danthegoodman1/SEC13FHoldings/companies"
	"github.com/danthegoodman1/SEC13FHoldings/edgar"
)

var filersCmd = &cobra.Command{
	Use:   "filers <year> <quarter>",
	Short: "List the quarter's 13F filers in companies file format",
	Args:  cobra.ExactArgs(2),
	RunE:  runFilers,
}

func init() {
	rootCmd.AddCommand(filersCmd)
}

func runFilers(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[0])
	}
	quarter, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quarter %q", args[1])
	}
	cmd.SilenceUsage = true

	index, err := edgar.NewIndex(newDownloader(), cfg.EDGAR.BaseURL)
	if err != nil {
		return err
	}
	rows, err := index.QuarterFilings(cmd.Context(), year, quarter)
	if err != nil {
		return err
	}
	return companies.Write(cmd.OutOrStdout(), edgar.Filers13F(rows))
}
