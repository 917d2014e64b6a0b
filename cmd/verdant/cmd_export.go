package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportImportPath string

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the evaluation history as gzip-compressed NDJSON",
		Long: `Export the full evaluation history to a file (or stdout with "-") as
gzip-compressed newline-delimited JSON, one result per line.

With --import, read a previously exported file and append its records to
the history database instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: exportCommandE,
	}

	cmd.Flags().StringVar(&exportImportPath, "import", "", "Import records from an exported file instead of exporting")

	return cmd
}

func exportCommandE(_ *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if exportImportPath != "" {
		f, err := os.Open(exportImportPath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", exportImportPath, err)
		}
		defer func() { _ = f.Close() }()

		n, err := a.store.Import(f)
		if err != nil {
			return fmt.Errorf("import failed after %d record(s): %w", n, err)
		}
		fmt.Printf("Imported %d record(s)\n", n)
		return nil
	}

	target := "-"
	if len(args) == 1 {
		target = args[0]
	}

	if target == "-" {
		return a.store.Export(os.Stdout)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if err := a.store.Export(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("History exported to %s\n", target)
	return nil
}
