// Package main provides the CLI entry point for excel-extract.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KBVsent/excel-extract/pkg/xlextract"
	"github.com/KBVsent/excel-extract/pkg/xlextract/models"
	"github.com/KBVsent/excel-extract/pkg/xlextract/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	sheetName  string
	listSheets bool
	outputDir  string
	pretty     bool
	mode       string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "excel-extract [input.xlsx]",
		Short: "Extract the structure of Excel workbooks",
		Long: `excel-extract extracts cells, styles, merged ranges, hyperlinks, comments,
images and charts from xlsx workbooks and writes JSON, Markdown and a summary.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&outputDir, "output-dir", "o", "", "Output directory (default: extracted_content)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Extract only this sheet")
	rootCmd.Flags().BoolVarP(&listSheets, "list-sheets", "l", false, "List sheet names and exit")
	rootCmd.Flags().BoolVar(&pretty, "pretty", true, "Pretty-print JSON output")
	rootCmd.Flags().StringVar(&mode, "mode", "", "Extraction mode: light, standard")

	rootCmd.AddCommand(newTableCmd())
	return rootCmd
}

// loadOptions merges the config file, if any, with explicitly set flags.
func loadOptions(cmd *cobra.Command) (xlextract.Options, error) {
	opts := xlextract.DefaultOptions()
	if configPath != "" {
		loaded, err := xlextract.LoadOptions(configPath)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}
	if cmd.Flags().Changed("output-dir") {
		opts.OutputDir = outputDir
	}
	if cmd.Flags().Changed("pretty") {
		opts.Pretty = pretty
	}
	if cmd.Flags().Changed("mode") {
		opts.Mode = xlextract.Mode(mode)
	}
	if verbose {
		opts.LogLevel = "debug"
	}
	return opts, opts.Validate()
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = lvl
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// resolveInput returns the input argument, or the first workbook in the
// working directory when none is given.
func resolveInput(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	entries, err := os.ReadDir(".")
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !entry.IsDir() && (ext == ".xlsx" || ext == ".xlsm") {
			return entry.Name(), nil
		}
	}
	return "", errors.New("no input given and no .xlsx file found in the current directory")
}

func run(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	inputPath, err := resolveInput(args)
	if err != nil {
		return err
	}

	if listSheets {
		names, err := xlextract.ListSheets(inputPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Sheets in %s:\n", filepath.Base(inputPath))
		for i, name := range names {
			fmt.Fprintf(out, "  %d. %s\n", i+1, name)
		}
		fmt.Fprintf(out, "Total: %d sheets\n", len(names))
		return nil
	}

	extractor := xlextract.New(opts, logger)
	if sheetName != "" {
		wb, err := extractor.ExtractSheet(inputPath, sheetName)
		if err != nil {
			var notFound *xlextract.SheetNotFoundError
			if errors.As(err, &notFound) {
				return fmt.Errorf("%w (use --list-sheets to see available sheets)", err)
			}
			return fmt.Errorf("extraction failed: %w", err)
		}
		if err := writeSheetOutputs(opts, wb, sheetName); err != nil {
			return err
		}
		return writeSummary(cmd, opts.OutputDir, wb)
	}

	all := &models.WorkbookData{
		BookName:   filepath.Base(inputPath),
		Properties: models.WorkbookProperties{SourceFile: inputPath},
		Sheets:     make(map[string]*models.SheetSnapshot),
	}
	err = extractor.ExtractEach(inputPath, func(name string, wb *models.WorkbookData, err error) error {
		if err != nil {
			logger.Error("sheet skipped", zap.String("sheet", name), zap.Error(err))
			return nil
		}
		if err := writeSheetOutputs(opts, wb, name); err != nil {
			return err
		}
		all.Properties.SheetNames = append(all.Properties.SheetNames, name)
		all.Sheets[name] = wb.Sheets[name]
		return nil
	})
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	logger.Info("extraction finished", zap.Int("sheets", len(all.Sheets)), zap.String("output_dir", opts.OutputDir))
	return writeSummary(cmd, opts.OutputDir, all)
}

// outputSuffix is the file name form of a sheet name.
func outputSuffix(name string) string {
	return strings.TrimSuffix(output.TableFileName(name), ".md")
}

// writeSheetOutputs writes the JSON snapshot, Markdown document and image
// files of a single-sheet extraction.
func writeSheetOutputs(opts xlextract.Options, wb *models.WorkbookData, name string) error {
	dir := opts.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	suffix := outputSuffix(name)

	jsonData, err := output.ToJSON(wb, opts.Pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "extracted_data_"+suffix+".json"), jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	markdown := output.SheetToMarkdown(wb.BookName, name, wb.Sheets[name])
	if err := os.WriteFile(filepath.Join(dir, "extracted_content_"+suffix+".md"), []byte(markdown), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := output.WriteImages(dir, wb); err != nil {
		return fmt.Errorf("failed to write images: %w", err)
	}
	return nil
}

func writeSummary(cmd *cobra.Command, dir string, wb *models.WorkbookData) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	summary := output.Summary(wb)
	if err := os.WriteFile(filepath.Join(dir, "extraction_summary.txt"), []byte(summary), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)
	fmt.Fprintf(cmd.OutOrStdout(), "\nExtracted content saved to: %s/\n", dir)
	return nil
}
