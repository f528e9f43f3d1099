package commands

import (
	"jobtracker-backend/internal/store"
	"jobtracker-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(cmd.OutOrStdout())
	return t
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the postings stored by the last run.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		snapshots, closeStore, err := store.Open(ctx, cfg.Store)
		if err != nil {
			serviceutil.Fatal("failed to open store", err)
		}
		defer closeStore()

		postings := snapshots.Load(ctx)

		t := newTable(cmd)
		t.AppendHeader(table.Row{"Date found", "Source", "Company", "Title", "Level", "Location", "Link"})
		for _, p := range postings {
			t.AppendRow(table.Row{p.DateFound, p.Source, p.Company, p.Title, p.Level, p.Location, p.URL})
		}
		t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(postings)})
		t.Render()
	},
}
