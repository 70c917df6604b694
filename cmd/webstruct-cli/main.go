// Command webstruct-cli turns web pages into structured JSON documents from
// the command line.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "webstruct-cli",
		Short: "Extract structured documents from web pages",
		Long: `webstruct-cli fetches or reads an HTML page and prints its structured
extraction (metadata, content blocks, media, links) as JSON.

Usage:
  webstruct-cli fetch <url> [flags]
  webstruct-cli parse --file page.html --url <base>`,
		SilenceUsage: true,
	}
	root.AddCommand(newFetchCmd(), newParseCmd())
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
