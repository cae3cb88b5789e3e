package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/container"
	"github.com/bynikesh/findmyai-sub001/internal/importer"
	"github.com/spf13/cobra"
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Recalculate trending scores for every tool",
	Long: `Recalculate the trending score of every tool from its recent views.

Examples:
  findmyai trending
  findmyai trending --output json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			summary, err := c.Trending().Run(ctx)
			if summary == nil {
				return err
			}
			if ok, jerr := printJSON(summary); ok {
				return firstErr(jerr, err)
			}

			printSuccess("Scored %d tools in %s", summary.Processed, summary.Duration.Round(time.Millisecond))
			printInfo("%d trending", summary.Trending)
			if summary.Failed > 0 {
				printWarning("%d tools failed: %s", summary.Failed, strings.Join(summary.FailedIDs, ", "))
			}
			return err
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import new tools from the external catalogs",
	Long: `Fetch candidates from the external catalogs, enrich them and store new tools
as unverified. Ctrl-C stops the run; tools already stored are kept.

Examples:
  findmyai import
  findmyai import --source huggingface`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			var (
				result *importer.RunResult
				err    error
			)
			if source == "" {
				result, err = c.Importer().RunAll(ctx)
			} else {
				result, err = c.Importer().RunSource(ctx, source)
			}
			if err != nil {
				return err
			}
			if ok, jerr := printJSON(result); ok {
				return jerr
			}

			rows := make([][]string, 0, len(result.Sources))
			for _, sr := range result.Sources {
				rows = append(rows, sourceRow(sr))
			}
			printTable([]string{"SOURCE", "FETCHED", "IMPORTED", "SKIPPED", "ERRORS", "STATUS"}, rows)
			for _, sr := range result.Sources {
				for _, e := range sr.Errors {
					printWarning("%s: %s", sr.Source, e)
				}
			}

			t := result.Total
			if t.Cancelled {
				printWarning("Run %s stopped: %d imported, %d skipped", result.RunID, t.Imported, t.Skipped)
			} else {
				printSuccess("Run %s finished: %d imported, %d skipped, %d errors", result.RunID, t.Imported, t.Skipped, len(t.Errors))
			}
			return nil
		})
	},
}

var importLogsCmd = &cobra.Command{
	Use:   "import-logs",
	Short: "Show recent import runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 1 || limit > 200 {
			return fmt.Errorf("--limit must be between 1 and 200")
		}

		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			runs, err := c.Importer().RecentRuns(ctx, limit)
			if err != nil {
				return err
			}
			if ok, jerr := printJSON(runs); ok {
				return jerr
			}
			if len(runs) == 0 {
				printInfo("No import runs yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				status := "done"
				if r.Cancelled {
					status = "stopped"
				}
				rows = append(rows, []string{
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.Source,
					strconv.Itoa(r.Fetched),
					strconv.Itoa(r.Imported),
					strconv.Itoa(r.Skipped),
					strconv.Itoa(len(r.Errors)),
					status,
				})
			}
			printTable([]string{"STARTED", "SOURCE", "FETCHED", "IMPORTED", "SKIPPED", "ERRORS", "STATUS"}, rows)
			return nil
		})
	},
}

func sourceRow(sr importer.SourceResult) []string {
	status := "done"
	if sr.Cancelled {
		status = "stopped"
	}
	return []string{
		sr.Source,
		strconv.Itoa(sr.Fetched),
		strconv.Itoa(sr.Imported),
		strconv.Itoa(sr.Skipped),
		strconv.Itoa(len(sr.Errors)),
		status,
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	importCmd.Flags().StringP("source", "s", "", "Import from a single source (huggingface, openrouter, github)")
	importLogsCmd.Flags().IntP("limit", "l", 20, "Number of runs to show (1-200)")
}
