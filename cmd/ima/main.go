package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	ierrors "github.com/ima-dev/ima/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦┌┬┐┌─┐
  ║│││├─┤
  ╩┴ ┴┴ ┴
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		if ierrors.Code(err) != "" {
			ierrors.Fprint(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ima",
		Short: "A reactive rendering engine with fine-grained bindings",
		Long: `ima builds element trees whose attributes, text and child nodes are
bound to plain functions. A frame-driven scheduler re-evaluates every
binding once per frame and patches only what changed.

Commands:

  • serve   run the counter grid on a frame loop with a live inspector
  • bench   measure how many frames a click takes to settle
  • render  render the counter grid as static HTML and publish it`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		serveCmd(),
		benchCmd(),
		renderCmd(),
		versionCmd(),
	)
	return cmd
}

// printBanner prints the ima banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
