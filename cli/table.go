package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"go.hackfix.me/crudkit/db/models"
	"go.hackfix.me/crudkit/xtime"
)

// renderServices writes a table of services to w. If details is true,
// the description and timestamps are included.
func renderServices(w io.Writer, svcs []models.Service, details bool) error {
	header := []string{"ID", "Name", "Port", "Max Access Duration"}
	if details {
		header = append(header, "Description", "Created At", "Updated At")
	}

	rows := make([][]string, 0, len(svcs))
	for _, svc := range svcs {
		row := []string{
			strconv.FormatUint(svc.ID, 10),
			svc.Name,
			strconv.FormatUint(uint64(svc.Port), 10),
			xtime.FormatDuration(svc.MaxAccessDuration, time.Second),
		}
		if details {
			row = append(row, svc.Description,
				svc.CreatedAt.Format(time.RFC3339), svc.UpdatedAt.Format(time.RFC3339))
		}
		rows = append(rows, row)
	}

	if err := renderTable(w, header, rows); err != nil {
		return fmt.Errorf("failed rendering services table: %w", err)
	}

	return nil
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(
			tw.Rendition{
				Borders: tw.BorderNone,
				Symbols: tw.NewSymbols(tw.StyleASCII),
				Settings: tw.Settings{
					Lines: tw.Lines{
						ShowHeaderLine: tw.Off,
						ShowFooterLine: tw.Off,
						ShowTop:        tw.Off,
						ShowBottom:     tw.Off,
					},
					Separators: tw.Separators{
						ShowHeader:     tw.Off,
						ShowFooter:     tw.Off,
						BetweenRows:    tw.Off,
						BetweenColumns: tw.Off,
					},
				},
			},
		)),
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Row: tw.CellConfig{
				Formatting:   tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:    tw.CellAlignment{Global: tw.AlignLeft},
				ColMaxWidths: tw.CellWidth{Global: 50},
			},
		}),
	)

	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err //nolint:wrapcheck // This is wrapped by the caller.
	}

	return table.Render() //nolint:wrapcheck // This is wrapped by the caller.
}
