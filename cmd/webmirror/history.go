package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yendo/webmirror/internal/config"
	"github.com/yendo/webmirror/internal/database"
)

// NewHistoryCmd creates the history command.
// This command lists page mirrors recorded in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously mirrored pages",
		Long: `History lists the pages recorded by earlier runs, newest first.

Every successful 'webmirror run' records the mirrored URL, its local
path, and asset counts in a SQLite database under the XDG data
directory.

Examples:
  # List the most recent mirrors
  webmirror history

  # List mirrors for one host
  webmirror history --host example.com

  # List every distinct mirrored host
  webmirror history --hosts

  # Output history as JSON
  webmirror history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("host", "H", "",
		"Only show mirrors of the specified host")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of records to show (0 for all)")
	cmd.Flags().Bool("hosts", false,
		"List distinct mirrored hosts instead of records")
	cmd.Flags().BoolP("json", "j", false,
		"Output history in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	listHosts, err := cmd.Flags().GetBool("hosts")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Require an existing database: history without prior runs is an
	// error worth surfacing, not an empty listing.
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no mirror history found (run 'webmirror run' first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if listHosts {
		hosts, err := db.MirroredHosts(ctx)
		if err != nil {
			return err
		}
		return printHosts(cmd, hosts, asJSON)
	}

	records, err := db.Records(ctx, host, limit)
	if err != nil {
		return err
	}
	return printRecords(cmd, records, asJSON)
}

// printHosts prints the distinct host list.
func printHosts(cmd *cobra.Command, hosts []string, asJSON bool) error {
	out := cmd.OutOrStdout()

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(hosts)
	}

	if len(hosts) == 0 {
		fmt.Fprintln(out, "No hosts mirrored yet.")
		return nil
	}
	for _, h := range hosts {
		fmt.Fprintln(out, h)
	}
	return nil
}

// printRecords prints mirror records as a table or JSON.
func printRecords(cmd *cobra.Command, records []database.MirrorRecord, asJSON bool) error {
	out := cmd.OutOrStdout()

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No mirror records found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FETCHED\tURL\tASSETS\tFAILED\tSAVED TO")
	for _, rec := range records {
		fetched := rec.FetchedAt.Format("2006-01-02 15:04:05")
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			fetched, rec.URL, rec.AssetsDownloaded, rec.AssetsFailed, rec.SavedPath)
	}
	return w.Flush()
}
