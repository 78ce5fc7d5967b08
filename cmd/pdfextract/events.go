package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pyhub-apps/pdfextract-golang/internal/config"
	"github.com/pyhub-apps/pdfextract-golang/pkg/event"
	"github.com/pyhub-apps/pdfextract-golang/pkg/pdf"
)

var eventsFlags struct {
	backend string
	page    int
	text    bool
}

var eventsCmd = &cobra.Command{
	Use:   "events [flags] file.pdf",
	Short: "Print the decoded content-stream events of a PDF file",
	Long: `Events prints every operation the content-stream interpreter reports,
with the decoded text and page-space position of text-show operations.
It is useful to see what the spatial types are built from.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvents,
}

func init() {
	f := eventsCmd.Flags()
	f.StringVarP(&eventsFlags.backend, "backend", "b", "", "PDF backend: ledongthuc, dslipak or pdfcpu (default from config, then ledongthuc)")
	f.IntVarP(&eventsFlags.page, "page", "p", 0, "only print events of this page (1-based)")
	f.BoolVar(&eventsFlags.text, "text", false, "only print text-show events")
}

func runEvents(cmd *cobra.Command, args []string) error {
	mgr, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := eventSource(args[0], mgr.Get(), newLogger())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	return src.ForEach(cmd.Context(), func(ev event.Event) error {
		if eventsFlags.page > 0 && ev.Page != eventsFlags.page {
			return nil
		}
		if eventsFlags.text && !event.IsTextShow(ev.Name) {
			return nil
		}
		return printEvent(out, ev)
	})
}

// eventSource opens path with the --backend flag, else the configured
// backend, else the default one
func eventSource(path string, cfg *config.Config, logger *slog.Logger) (*pdf.FileSource, error) {
	b, err := pdf.ParseBackend(firstNonEmpty(eventsFlags.backend, cfg.Backend))
	if err != nil {
		return nil, err
	}
	return pdf.Open(path, pdf.WithBackend(b), pdf.WithLogger(logger)), nil
}

func printEvent(w io.Writer, ev event.Event) error {
	var err error
	switch {
	case ev.Name == event.BeginPage || ev.Name == event.EndPage:
		_, err = fmt.Fprintf(w, "p%d %-22s size=%.2fx%.2f\n", ev.Page, ev.Name, ev.PageWidth, ev.PageHeight)
	case event.IsTextShow(ev.Name):
		_, err = fmt.Fprintf(w, "p%d %-22s %q at (%.2f, %.2f) w=%.2f font=%s size=%.2f\n",
			ev.Page, ev.Name, ev.Text, ev.X, ev.Y, ev.Width, ev.Font, ev.FontSize)
	default:
		_, err = fmt.Fprintf(w, "p%d %-22s %s %v\n", ev.Page, ev.Name, ev.Operator, ev.Args)
	}
	return err
}
