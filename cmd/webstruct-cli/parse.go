package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/webstruct/api/handler"
	"github.com/use-agent/webstruct/config"
	"github.com/use-agent/webstruct/models"
	"github.com/use-agent/webstruct/provider"
)

type parseFlags struct {
	file      string
	url       string
	summarize bool
	markdown  bool
}

func newParseCmd() *cobra.Command {
	var f parseFlags
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Extract a structured document from a local HTML file",
		Long: `Parse runs the extractor over a saved HTML file. Relative links and media
are resolved against --url.

Example:
  webstruct-cli parse --file page.html --url https://example.com/page`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runParse(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.file, "file", "", "HTML file to parse (required)")
	cmd.Flags().StringVar(&f.url, "url", "", "Source URL used as the base for relative references (required)")
	cmd.Flags().BoolVar(&f.summarize, "summarize", false, "Add the summary and sentiment record")
	cmd.Flags().BoolVar(&f.markdown, "markdown", false, "Add a Markdown rendering of the main content")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func runParse(cmd *cobra.Command, f parseFlags) error {
	data, err := os.ReadFile(f.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.file, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	analyzer, _, err := provider.NewAnalyzer(cmd.Context(), cfg.Analysis)
	if err != nil {
		return err
	}

	resp, err := handler.NewPipeline(nil, analyzer).Parse(cmd.Context(), &models.ParseRequest{
		RawPage: models.RawPage{
			SourceURL:   f.url,
			HTML:        string(data),
			ContentType: "text/html",
			Encoding:    "utf-8",
		},
		IncludeMarkdown: f.markdown,
		SkipAnalysis:    !f.summarize,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}
