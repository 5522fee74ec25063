package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resumeBuilder/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a document to PDF",
	Long:  "Renders the stored document in a headless browser and writes the paginated A4 PDF to --out.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var (
	exportOut     string
	exportPreview string
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path; a directory uses the derived file name")
	exportCmd.Flags().StringVar(&exportPreview, "preview", "", "Also write the first-page JPEG thumbnail to this path")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	doc, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	art, err := export.NewFromConfig(cfg.Export, logger).Export(cmd.Context(), doc)
	if err != nil {
		return err
	}

	path := exportOut
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, art.FileName)
	}
	if err := os.WriteFile(path, art.PDF, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	if exportPreview != "" {
		if err := os.WriteFile(exportPreview, art.Preview, 0o644); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d pages)\n", path, art.Pages)
	return nil
}
