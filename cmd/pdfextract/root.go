package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pyhub-apps/pdfextract-golang/internal/config"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pdfextract",
	Short: "Extract spatial structure and references from PDF files",
	Long: `pdfextract reads the content streams of PDF files and builds spatial
objects from them: text runs, page margins, rows and columns, text regions,
sections and numbered bibliography references.

Requested types pull in the types they depend on; only the requested ones
are written unless --all is given.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./pdfextract.yaml or ~/.pdfextract/pdfextract.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "log debug output to stderr",
	)

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the stderr logger; --verbose enables debug records
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (*config.Manager, error) {
	return config.NewManager(cfgFile)
}
