package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leonardomso/gfmlink/internal/processor"
)

// htmlCmd represents the html command.
var htmlCmd = &cobra.Command{
	Use:   "html [file|-]",
	Short: "Render a markdown document as HTML",
	Long: `Render a markdown document as HTML on stdout.

Reads stdin when no file is given or the file is "-".

Examples:
  gfmlink html README.md
  cat README.md | gfmlink html`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHTML,
}

// markdownCmd represents the markdown command.
var markdownCmd = &cobra.Command{
	Use:   "markdown [file|-]",
	Short: "Convert an HTML document to normalized markdown",
	Long: `Convert an HTML document or fragment to markdown on stdout.

Anchors and images become inline links. HTML the document model does not
know about is converted with html-to-markdown.

Examples:
  gfmlink markdown page.html
  curl -s https://example.com | gfmlink markdown`,
	Args: cobra.MaximumNArgs(1),
	Run:  runMarkdown,
}

// refsCmd represents the refs command.
var refsCmd = &cobra.Command{
	Use:   "refs [file|-]",
	Short: "List the reference definitions of a markdown document",
	Long: `List the reference definitions of a markdown document in the order
they appear. When a label is defined more than once only the first
definition is listed.

Examples:
  gfmlink refs README.md`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRefs,
}

func init() {
	rootCmd.AddCommand(htmlCmd, markdownCmd, refsCmd)
}

// inputProcessor builds a processor for the document named by args.
func inputProcessor(args []string) *processor.Processor {
	lc, err := LoadConfig(inputPath(args), noConfig)
	exitOnError(err, "Error loading config")
	return processor.New(append(lc.BuildProcessorOptions(), processor.WithLogger(newLogger()))...)
}

func runHTML(_ *cobra.Command, args []string) {
	data, err := readInput(args, os.Stdin)
	exitOnError(err, "Error reading input")

	proc := inputProcessor(args)
	exitOnError(proc.RenderHTML(os.Stdout, string(data)), "Error writing output")
	fmt.Println()
}

func runMarkdown(_ *cobra.Command, args []string) {
	data, err := readInput(args, os.Stdin)
	exitOnError(err, "Error reading input")

	proc := inputProcessor(args)
	md, err := proc.FromHTML(bytes.NewReader(data))
	exitOnError(err, "Error converting HTML")
	fmt.Println(md)
}

func runRefs(_ *cobra.Command, args []string) {
	data, err := readInput(args, os.Stdin)
	exitOnError(err, "Error reading input")

	proc := inputProcessor(args)
	printRefs(os.Stdout, proc, string(data))
}

// printRefs writes one line per definition: the line number, the label
// and the target with its title.
func printRefs(w io.Writer, proc *processor.Processor, source string) {
	defs := proc.References(source)
	if len(defs) == 0 {
		fmt.Fprintln(w, "No reference definitions found.")
		return
	}
	for _, d := range defs {
		if d.Title != "" {
			fmt.Fprintf(w, "%4d  [%s]: %s %q\n", d.Line+1, d.Label, d.Target, d.Title)
		} else {
			fmt.Fprintf(w, "%4d  [%s]: %s\n", d.Line+1, d.Label, d.Target)
		}
	}
}
