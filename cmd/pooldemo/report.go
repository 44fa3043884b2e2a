package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

// throughputResult is one row of the scaling table.
type throughputResult struct {
	Workers int
	Tasks   int
	Elapsed time.Duration
	Failed  int
}

func (r throughputResult) tasksPerSec() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Tasks) / r.Elapsed.Seconds()
}

// renderThroughput writes the scaling table; speedup is relative to the first row.
func renderThroughput(w io.Writer, results []throughputResult) error {
	if len(results) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Workers", "Time", "Tasks/sec", "Speedup", "Failed")

	base := results[0].Elapsed
	for _, r := range results {
		speedup := 0.0
		if r.Elapsed > 0 {
			speedup = float64(base) / float64(r.Elapsed)
		}
		if err := table.Append(
			fmt.Sprintf("%d", r.Workers),
			r.Elapsed.Round(time.Microsecond).String(),
			fmt.Sprintf("%.0f", r.tasksPerSec()),
			fmt.Sprintf("%.2fx", speedup),
			fmt.Sprintf("%d", r.Failed),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func printHeading(w io.Writer, title string) {
	_, _ = bold.Fprintf(w, "\n== %s ==\n", title)
}

func printOK(w io.Writer, format string, args ...any) {
	_, _ = green.Fprintf(w, "  ok    ")
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

func printFail(w io.Writer, format string, args ...any) {
	_, _ = red.Fprintf(w, "  fail  ")
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
