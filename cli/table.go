package cli

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// All listing commands share the same borderless ASCII rendition, so their
// output stays grep- and pipe-friendly.
var tableRendition = tw.Rendition{
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
}

var tableConfig = tablewriter.Config{
	Header: tw.CellConfig{
		Alignment: tw.CellAlignment{Global: tw.AlignLeft},
	},
	Row: tw.CellConfig{
		Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
		Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
		// Wide enough for tech stack lists and summaries without letting a
		// single cell take over the terminal.
		ColMaxWidths: tw.CellWidth{Global: 50},
	},
}

// renderTable writes header and data rows to w as a table.
func renderTable(header []string, data [][]string, w io.Writer) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tableRendition)),
		tablewriter.WithConfig(tableConfig),
	)

	table.Header(header)
	if err := table.Bulk(data); err != nil {
		return err //nolint:wrapcheck // This is wrapped by the caller.
	}

	return table.Render() //nolint:wrapcheck // This is wrapped by the caller.
}
