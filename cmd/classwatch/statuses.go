package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-resty/resty/v2"
	"github.com/goodtune/classwatch/internal/config"
	"github.com/goodtune/classwatch/internal/engagement"
	"github.com/goodtune/classwatch/internal/storage"
	"github.com/spf13/cobra"
)

var (
	statusesServerURL string
	statusesStale     time.Duration
)

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "Show the latest status of every student",
	Long:  `Fetch the status table from the aggregator and print it. Records older than --stale are flagged.`,
	Example: `  classwatch statuses
  classwatch statuses --server-url http://10.0.0.5:5000 --stale 30s`,
	RunE: runStatuses,
}

func init() {
	statusesCmd.Flags().StringVar(&statusesServerURL, "server-url", "", "Aggregator base URL (overrides client.server_url)")
	statusesCmd.Flags().DurationVar(&statusesStale, "stale", 10*time.Second, "Age after which a status is shown as stale")
	rootCmd.AddCommand(statusesCmd)
}

func runStatuses(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	serverURL := cfg.Client.ServerURL
	if statusesServerURL != "" {
		if err := config.ValidateServerURL(statusesServerURL); err != nil {
			return fmt.Errorf("invalid --server-url: %w", err)
		}
		serverURL = statusesServerURL
	}

	statuses, err := fetchStatuses(serverURL, parseDuration(cfg.Client.ReportTimeout, 2*time.Second))
	if err != nil {
		return err
	}

	printStatuses(os.Stdout, statuses, time.Now(), statusesStale)
	return nil
}

// fetchStatuses retrieves the status table from the aggregator
func fetchStatuses(serverURL string, timeout time.Duration) (map[string]storage.StatusRecord, error) {
	statuses := map[string]storage.StatusRecord{}

	resp, err := resty.New().
		SetBaseURL(strings.TrimRight(serverURL, "/")).
		SetTimeout(timeout).
		R().
		SetResult(&statuses).
		Get("/get_statuses")
	if err != nil {
		return nil, fmt.Errorf("failed to reach aggregator at %s: %w", serverURL, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("aggregator returned %s", resp.Status())
	}

	return statuses, nil
}

// printStatuses writes one line per student, sorted by id
func printStatuses(w io.Writer, statuses map[string]storage.StatusRecord, now time.Time, stale time.Duration) {
	if len(statuses) == 0 {
		_, _ = fmt.Fprintln(w, "No students have reported yet.")
		return
	}

	ids := make([]string, 0, len(statuses))
	width := len("STUDENT")
	for id := range statuses {
		ids = append(ids, id)
		if len(id) > width {
			width = len(id)
		}
	}
	sort.Strings(ids)

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	_, _ = fmt.Fprintf(w, "%-*s  %-10s  %s\n", width, "STUDENT", "STATUS", "LAST UPDATE")
	for _, id := range ids {
		rec := statuses[id]
		age := now.Sub(rec.Timestamp).Round(time.Second)
		if age < 0 {
			age = 0
		}

		c := red
		suffix := ""
		state, err := engagement.ParseState(rec.Status)
		switch {
		case err != nil:
			suffix = " (unknown status)"
		case state == engagement.StateEngaged:
			c = green
		}
		if age > stale {
			c = yellow
			suffix += " (stale)"
		}

		_, _ = fmt.Fprintf(w, "%-*s  ", width, id)
		_, _ = c.Fprintf(w, "%-10s", rec.Status)
		_, _ = fmt.Fprintf(w, "  %s ago%s\n", age, suffix)
	}
}
