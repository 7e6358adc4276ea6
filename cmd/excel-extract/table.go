package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KBVsent/excel-extract/pkg/xlextract"
	"github.com/KBVsent/excel-extract/pkg/xlextract/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cleanMode string
	paginate  bool
	tableOut  string
)

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table [input.xlsx]",
		Short: "Convert every sheet to a plain Markdown table",
		Long: `table converts the cell text of each sheet into a Markdown pipe table,
without images, hyperlinks or comments.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTable,
	}
	cmd.Flags().StringVar(&cleanMode, "clean", "", "Clean mode: none, minimal, auto, aggressive")
	cmd.Flags().BoolVar(&paginate, "paginate", false, "Write one Markdown file per sheet")
	cmd.Flags().StringVar(&tableOut, "output", "", "Output file (default: input name with .md)")
	return cmd
}

func runTable(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("clean") {
		opts.CleanMode = cleanMode
		if err := opts.Validate(); err != nil {
			return err
		}
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

	wb, err := xlextract.Open(inputPath)
	if err != nil {
		return err
	}
	defer wb.Close()

	var grids []output.SheetGrid
	for _, name := range wb.SheetNames() {
		rows, err := wb.Rows(name)
		if err != nil {
			logger.Warn("sheet skipped", zap.String("sheet", name), zap.Error(err))
			continue
		}
		grids = append(grids, output.SheetGrid{Name: name, Rows: rows})
	}

	if paginate {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		written := 0
		for _, g := range grids {
			doc := output.SheetTableMarkdown(g, opts.CleanMode)
			if doc == "" {
				logger.Info("sheet empty after cleaning", zap.String("sheet", g.Name))
				continue
			}
			target := filepath.Join(opts.OutputDir, output.TableFileName(g.Name))
			if err := os.WriteFile(target, []byte(doc), 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			written++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %d files in: %s\n", written, opts.OutputDir)
		return nil
	}

	target := tableOut
	if target == "" {
		target = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".md"
	}
	doc := output.TablesToMarkdown(grids, opts.CleanMode)
	if err := os.WriteFile(target, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Output saved to: %s\n", target)
	return nil
}
