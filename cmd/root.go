package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leonardomso/gfmlink/internal/logging"
)

// version is set by main.go via SetVersion.
var version = "dev"

// Persistent flags shared by every command.
var (
	verbose  bool
	noConfig bool
)

// SetVersion sets the version string (called from main).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "gfmlink",
	Short:   "Resolve and normalize links in GitHub Flavored Markdown",
	Version: version,
	Long: `gfmlink converts GitHub Flavored Markdown to HTML and back, resolving
reference links, autolinks and inline links on the way.

Normalizing writes every link in inline form and drops the reference
definitions, so documents read the same on every renderer.

Examples:
  gfmlink html README.md          # Render a document as HTML
  gfmlink markdown page.html      # Convert HTML to Markdown
  gfmlink check ./docs            # Report files that are not normalized
  gfmlink normalize --dry-run     # Preview the rewrite
  gfmlink links --format=json     # List every link
  gfmlink interactive             # Review and rewrite in a terminal UI`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log debug details to stderr")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false,
		"Skip loading the .gfmlinkrc config file")
}

// newLogger returns the stderr logger commands log through.
func newLogger() *slog.Logger {
	return logging.New(os.Stderr, verbose)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1) //nolint:revive // deep-exit is acceptable for CLI entry points
	}
}
