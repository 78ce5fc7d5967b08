package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pyhub-apps/pdfextract-golang"
	"github.com/pyhub-apps/pdfextract-golang/pkg/pdf"
)

var compareCmd = &cobra.Command{
	Use:   "compare file.pdf",
	Short: "Compare the PDF backends on one file",
	Long: `Compare extracts text runs from the file with every backend and prints
the page count, run count, text length and time each one took.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

// backendStats is one row of the comparison
type backendStats struct {
	backend  pdf.Backend
	pages    int
	runs     int
	chars    int
	duration time.Duration
	err      error
}

func runCompare(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	var stats []backendStats
	for _, b := range pdf.Backends() {
		ex, err := pdfextract.New(pdfextract.WithBackend(b), pdfextract.WithLogger(logger))
		if err != nil {
			return err
		}

		s := backendStats{backend: b}
		start := time.Now()
		res, err := ex.Parse(cmd.Context(), args[0], pdfextract.Pages, pdfextract.TextRuns)
		s.duration = time.Since(start)
		if err != nil {
			s.err = err
			stats = append(stats, s)
			continue
		}

		pages, _ := res.Objects(pdfextract.Pages)
		runs, _ := res.Objects(pdfextract.TextRuns)
		s.pages = len(pages)
		s.runs = len(runs)
		for _, r := range runs {
			s.chars += len([]rune(r.Text("content")))
		}
		stats = append(stats, s)
	}
	return printStats(cmd.OutOrStdout(), args[0], stats)
}

func printStats(w io.Writer, path string, stats []backendStats) error {
	fmt.Fprintf(w, "File: %s\n\n", path)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BACKEND\tPAGES\tRUNS\tCHARS\tTIME\tERROR")
	for _, s := range stats {
		errText := ""
		if s.err != nil {
			errText = s.err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%v\t%s\n",
			s.backend, s.pages, s.runs, s.chars, s.duration.Round(time.Microsecond), errText)
	}
	return tw.Flush()
}
