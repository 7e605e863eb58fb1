package controller

import (
	"bytes"

	"github.com/olekukonko/tablewriter"
)

// RenderEntrySummary renders the resolved entry and its permission grant as a
// table for the info command.
func RenderEntrySummary(specifier, kind string, grantRows [][2]string) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Field", "Value"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	table.Append([]string{"entry", specifier})
	table.Append([]string{"kind", kind})

	for _, row := range grantRows {
		table.Append([]string{"permissions." + row[0], row[1]})
	}

	table.Render()

	return buffer.String()
}
