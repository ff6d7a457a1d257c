package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load chromosomes and genes from FASTA and GTF files",
		Long: `Load reference data in bulk. Files may be plain, gzip (.gz) or
zstd (.zst) compressed.

Import FASTA before GTF: genes are placed on chromosomes by name, and genes
on unknown chromosomes are skipped.`,
		Example: `  genomebank import fasta GRCh38.fa.gz
  genomebank import gtf gencode.v46.annotation.gtf.gz`,
	}
	cmd.AddCommand(newImportFASTACmd(a), newImportGTFCmd(a))
	return cmd
}

func newImportFASTACmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fasta <path>",
		Short: "Create or update chromosomes from FASTA records",
		Long: `Each record becomes a chromosome named by the first word of its header.
A record for an existing chromosome replaces its sequence when the length
matches and the content differs; records with a different length are
skipped.`,
		Args: withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := a.newImporter()
			if err != nil {
				return err
			}
			sum, err := im.ImportFASTA(cmd.Context(), filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "Imported %s: %s\n", args[0], sum)
			return nil
		},
	}
}

func newImportGTFCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gtf <path>",
		Short: "Create genes from the gene features of a GTF file",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := a.newImporter()
			if err != nil {
				return err
			}
			sum, err := im.ImportGTF(cmd.Context(), filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "Imported %s: %s\n", args[0], sum)
			return nil
		},
	}
}
