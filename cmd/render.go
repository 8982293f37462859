package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"capstone/insights/internal/dashboard"
	"capstone/insights/internal/hierarchy"
	"capstone/insights/internal/metrics"
)

func formatPath(path []hierarchy.Selection) string {
	parts := make([]string, len(path))
	for i, s := range path {
		parts[i] = s.Level + "=" + s.Value
	}
	return strings.Join(parts, " ")
}

func printLevels(w io.Writer, levels []dashboard.LevelChoice) {
	if len(levels) == 0 {
		fmt.Fprintln(w, "  No hierarchy levels to select.")
		return
	}
	for _, l := range levels {
		marker := " "
		if l.Selected != "" {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %-3s %s\n", marker, l.Level, strings.Join(l.Candidates, ", "))
	}
}

func printView(w io.Writer, v *dashboard.View) {
	fmt.Fprintf(w, "\n  %s  |  source: %s\n", v.Identity, v.Source)
	if len(v.Applied) > 0 {
		fmt.Fprintf(w, "  path: %s\n", formatPath(v.Applied))
	}
	if len(v.Ignored) > 0 {
		fmt.Fprintf(w, "  ignored: %s\n", formatPath(v.Ignored))
	}
	res := v.Result
	fmt.Fprintf(w, "  scope: %s identities, %s rows", humanize.Comma(int64(v.Permitted)), humanize.Comma(int64(len(res.Scoped))))
	if res.Ignored > 0 {
		fmt.Fprintf(w, " (%s without a valid date)", humanize.Comma(int64(res.Ignored)))
	}
	fmt.Fprintln(w)
	if v.HasDates {
		fmt.Fprintf(w, "  dates: %s .. %s\n", v.From.Format(dateLayout), v.To.Format(dateLayout))
	}

	if res.Empty() {
		fmt.Fprintln(w, "\n  No records match the current selection.")
		return
	}

	s := v.Summary
	fmt.Fprintf(w, "\n  Views: %s   Users: %s\n", metrics.HumanFormat(float64(s.Views), 2), humanize.Comma(int64(s.Actors)))
	for _, t := range s.Tiles {
		fmt.Fprintf(w, "  %s: %s\n", t.Label, humanize.Comma(int64(t.Value)))
		for _, top := range t.Top {
			fmt.Fprintf(w, "      %-40s %s\n", top.Value, humanize.Comma(int64(top.Count)))
		}
	}

	if s.Trend.HasHistory {
		tw := s.Trend.Windows
		fmt.Fprintf(w, "\n  Trend (to %s): 30d %s  90d %s  365d %s\n", tw.Latest.Format(dateLayout),
			humanize.Comma(int64(tw.Last30)), humanize.Comma(int64(tw.Last90)), humanize.Comma(int64(tw.Last365)))
		fmt.Fprintf(w, "  MoM %s  QoQ %s  YoY %s\n", s.Trend.MoM.Arrow(), s.Trend.QoQ.Arrow(), s.Trend.YoY.Arrow())
	}

	if len(s.Categories) > 0 {
		fmt.Fprintln(w, "\n  Roles:")
		for _, c := range s.Categories {
			fmt.Fprintf(w, "      %-20s %8s  %s\n", c.Value, humanize.Comma(int64(c.Count)), c.Share)
		}
	}
	if len(s.Paths) > 0 {
		fmt.Fprintln(w, "\n  Top paths:")
		for _, p := range s.Paths {
			fmt.Fprintf(w, "      %-60s %s\n", p, humanize.Comma(int64(p.Count)))
		}
	}
	if len(s.Groups) > 0 {
		fmt.Fprintln(w, "\n  Usage by group:")
		for _, g := range s.Groups {
			fmt.Fprintf(w, "      %-30s %6s accesses %4d items  %-14s\n", g.Group, humanize.Comma(int64(g.Accesses)), g.Items, g.Classification)
		}
	}
	fmt.Fprintln(w)
}
