package commands

import (
	"fmt"
	"jobtracker-backend/internal/sources"
	"jobtracker-backend/lib/chrono"
	"jobtracker-backend/lib/textutil"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists the registered sources and the configured companies using them.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		registry := buildRegistry(ctx, cfg, chrono.NewStandardImpl())

		byKey := map[string][]string{}
		unknownOrder := []string{}
		for _, target := range cfg.Companies {
			key := textutil.NormalizeKey(target.Source)
			if _, ok := registry.Get(key); !ok && len(byKey[key]) == 0 {
				unknownOrder = append(unknownOrder, key)
			}
			byKey[key] = append(byKey[key], target.Name)
		}

		t := newTable(cmd)
		t.AppendHeader(table.Row{"Source", "Status", "Companies"})
		for _, name := range registry.Names() {
			src, _ := registry.Get(name)
			status := "ok"
			if render, ok := src.(sources.Render); ok && !render.Available() {
				status = "no headless browser"
			}
			t.AppendRow(table.Row{name, status, strings.Join(byKey[name], ", ")})
		}
		for _, key := range unknownOrder {
			status := "unknown"
			if suggestion, ok := registry.Suggest(key); ok {
				status = fmt.Sprintf("unknown, did you mean '%s'?", suggestion)
			}
			t.AppendRow(table.Row{key, status, strings.Join(byKey[key], ", ")})
		}
		t.Render()
	},
}
