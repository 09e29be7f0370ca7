/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"bytes"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// createStandardTable creates a markdown table writer.
func createStandardTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// RenderSummary renders per-criterion scores and the overall result as a
// markdown table for reviewers and logs.
func RenderSummary(res *EvaluationResult) string {
	var buf bytes.Buffer
	table := createStandardTable([]string{"Category", "Criterion", "Score", "Label", "Evidence"}, &buf)

	for _, cat := range res.Categories {
		for _, c := range cat.Criteria {
			label := c.Label
			if c.Unscored {
				label += " (unscored)"
			}
			_ = table.Append([]string{cat.Name, c.Criterion, fmt.Sprint(c.Score), label, c.Evidence})
		}
		_ = table.Append([]string{cat.Name, "**Total**", fmt.Sprintf("%d / %d", cat.Score, cat.MaxScore), "", ""})
	}
	_ = table.Render()

	return fmt.Sprintf("## %s: %.1f%% (%d / %d)\n\n%s", res.Band, res.Percentage, res.Score, res.MaxScore, buf.String())
}
