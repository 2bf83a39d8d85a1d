package format

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/realDragonium/mcwatch/snapshot"
)

// Table writes s as a two column table, for terminals.
func Table(w io.Writer, s snapshot.Snapshot) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Field", "Value"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	tw.Append([]string{"Server", s.Name})
	tw.Append([]string{"Status", s.Status.String()})
	if s.MOTD != "" {
		tw.Append([]string{"MOTD", s.MOTD})
	}
	tw.Append([]string{"Version", s.Version})
	tw.Append([]string{"Players", fmt.Sprintf("%d/%d", s.Online, s.Max)})
	if names := s.Players(); len(names) > 0 && s.Online > 0 {
		tw.Append([]string{"Online", List(names)})
	}
	tw.Render()
}
