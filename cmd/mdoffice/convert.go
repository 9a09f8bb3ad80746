package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dgallion1/mdoffice/internal/config"
	"github.com/dgallion1/mdoffice/internal/convert"
	"github.com/dgallion1/mdoffice/internal/merge"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

var convertCmd = &cobra.Command{
	Use:   "convert <markdown-file>",
	Short: "Convert a Markdown file to an office artifact",
	Long: `Convert renders a Markdown file into the requested format. With --append
or --replace the output is merged into an existing artifact instead of
created from scratch (PDF and PPTX only). Replace matches the source's
"## " headings against page/slide titles, case- and whitespace-
insensitively, and swaps the matching units in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "output file (default: input name with format extension)")
	convertCmd.Flags().String("format", "", "output format: pdf, docx, xlsx, or pptx")
	convertCmd.Flags().String("append", "", "append to this existing artifact")
	convertCmd.Flags().String("replace", "", "replace matching sections in this existing artifact")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	format := cfg.DefaultFormat
	if v, _ := cmd.Flags().GetString("format"); v != "" {
		format = config.Format(v)
	}

	appendTo, _ := cmd.Flags().GetString("append")
	replaceIn, _ := cmd.Flags().GetString("replace")
	if appendTo != "" && replaceIn != "" {
		return fmt.Errorf("cannot use both --append and --replace")
	}

	mode := merge.ModeCreate
	existing := ""
	switch {
	case appendTo != "":
		mode, existing = merge.ModeAppend, appendTo
	case replaceIn != "":
		mode, existing = merge.ModeReplace, replaceIn
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = convert.DefaultOutputPath(args[0], format)
	}

	summary, err := convert.Run(cfg, string(source), convert.Options{
		Format:       format,
		Mode:         mode,
		ExistingPath: existing,
		OutputPath:   out,
	}, log)
	if err != nil {
		return err
	}

	printSummary(summary, out)
	return nil
}

func printSummary(s *merge.Summary, outPath string) {
	for _, w := range s.Warnings {
		fmt.Println(warnStyle.Render("warning: " + w))
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Created %s", outPath)))
	fmt.Println(dimStyle.Render(fmt.Sprintf("  sections: %d", s.Sections)))

	switch s.Mode {
	case merge.ModeCreate:
		fmt.Println(dimStyle.Render(fmt.Sprintf("  units: %d", s.AddedUnits)))
	case merge.ModeAppend:
		fmt.Println(dimStyle.Render(fmt.Sprintf("  original units: %d", s.OriginalUnits)))
		fmt.Println(dimStyle.Render(fmt.Sprintf("  appended units: %d", s.AddedUnits)))
	case merge.ModeReplace:
		if s.FellBack {
			fmt.Println(dimStyle.Render(fmt.Sprintf("  original units: %d", s.OriginalUnits)))
			fmt.Println(dimStyle.Render(fmt.Sprintf("  appended units: %d", s.AddedUnits)))
			break
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("  original units: %d", s.OriginalUnits)))
		fmt.Println(dimStyle.Render(fmt.Sprintf("  replaced units: %d", s.ReplacedUnits)))
		for _, rep := range s.Replacements {
			fmt.Println(dimStyle.Render(fmt.Sprintf("    unit %d: %s", rep.UnitIndex+1, rep.OriginalTitle)))
		}
	}
}
