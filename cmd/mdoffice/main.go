// Package main is the entry point for the mdoffice CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the mdoffice CLI.
var rootCmd = &cobra.Command{
	Use:   "mdoffice",
	Short: "Convert Markdown to PDF, DOCX, XLSX, and PPTX",
	Long: `mdoffice converts Markdown documents into office artifacts. Beyond plain
conversion it can merge new content into an existing PDF or PPTX: append
adds pages/slides at the end, replace swaps out pages/slides whose titles
match the source's second-level headings.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
