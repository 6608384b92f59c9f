package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/slmtnm/s3browse/internal/listview"
	"github.com/slmtnm/s3browse/internal/viewmodel"
)

var sortColumn string

func init() {
	listCmd.Flags().StringVarP(&sortColumn, "sort", "s", "name", "sort column: name, modified or size")
	listCmd.Flags().Int("clicks", 0, "extra clicks on the sort column header, e.g. 1 for descending")
}

var listCmd = &cobra.Command{
	Use:   "list [bucket]",
	Short: "Print one folder of the bucket as a table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clicks, err := cmd.Flags().GetInt("clicks")
		if err != nil {
			return err
		}
		column, err := parseColumn(sortColumn)
		if err != nil {
			return err
		}

		b, err := openBrowser(cmd, args, false)
		if err != nil {
			return err
		}

		l, err := b.client.ListPrefix(cmd.Context(), b.loc.Prefix)
		if err != nil {
			return fmt.Errorf("could not load /%s: %w", b.loc.Prefix, err)
		}

		built, err := viewmodel.TryBuild(l, b.loc.IgnoreKeys())
		if err != nil {
			return err
		}
		rows := listview.NewTable()
		rows.Load(built)
		if column != listview.ColumnName {
			clicks++
		}
		for i := 0; i < clicks; i++ {
			rows.Click(column)
		}

		return printTable(cmd.OutOrStdout(), rows, b.formatter)
	},
}

func parseColumn(name string) (listview.Column, error) {
	for _, c := range listview.Columns {
		if strings.EqualFold(c.String(), name) || lowerColumn(c) == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown sort column %q (want name, modified or size)", name)
}

func lowerColumn(c listview.Column) string {
	switch c {
	case listview.ColumnModified:
		return "modified"
	case listview.ColumnSize:
		return "size"
	}
	return "name"
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func printTable(w io.Writer, rows *listview.Table, f viewmodel.Formatter) error {
	sortState := rows.Sort()

	headers := make([]string, len(listview.Columns))
	for i, c := range listview.Columns {
		headers[i] = c.String()
		if ind := sortState.Indicator(c); ind != "" {
			headers[i] += " " + ind
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range rows.Rows() {
		name := r.DisplayName
		if r.IsFolder() {
			name += "/"
		}
		t.Row(name, r.ModifiedText(f), r.SizeText())
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
