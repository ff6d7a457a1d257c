package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/output"
	"github.com/inodb/genomebank/internal/sequence"
)

func newGeneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gene",
		Short: "Manage gene intervals",
	}
	cmd.AddCommand(
		newGeneCreateCmd(a),
		newGeneGetCmd(a),
		newGeneListCmd(a),
		newGeneSearchCmd(a),
		newGeneUpdateCmd(a),
		newGeneDeleteCmd(a),
		newGeneSequenceCmd(a),
	)
	return cmd
}

// geneFlags are the gene fields settable from the command line.
type geneFlags struct {
	chromosome string
	symbol     string
	start      int64
	end        int64
	strand     string
	sequence   string
}

func (f *geneFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.chromosome, "chromosome", "", "chromosome id")
	cmd.Flags().StringVar(&f.symbol, "symbol", "", "gene symbol")
	cmd.Flags().Int64Var(&f.start, "start", 0, "0-based start, inclusive")
	cmd.Flags().Int64Var(&f.end, "end", 0, "0-based end, exclusive")
	cmd.Flags().StringVar(&f.strand, "strand", "+", "strand: + or -")
}

func newGeneCreateCmd(a *app) *cobra.Command {
	var f geneFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a gene on a chromosome",
		Long: `Create a gene spanning [start, end). The interval must lie within the
chromosome. Genes may overlap each other.`,
		Example: `  genomebank gene create --chromosome 12 --symbol KRAS --start 25205245 --end 25250929 --strand -`,
		Args:    withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			chromosomeID, err := parseID("chromosome", f.chromosome)
			if err != nil {
				return err
			}
			ix, err := a.newIndex()
			if err != nil {
				return err
			}
			g, err := ix.Create(cmd.Context(), &genome.Gene{
				ChromosomeID: chromosomeID,
				Symbol:       f.symbol,
				Start:        f.start,
				End:          f.end,
				Strand:       genome.Strand(f.strand),
				Sequence:     f.sequence,
			})
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteGenes([]*genome.Gene{g})
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.sequence, "sequence", "", "gene sequence, exactly end-start bases")
	_ = cmd.MarkFlagRequired("chromosome")
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newGeneGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a gene",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gene", args[0])
			if err != nil {
				return err
			}
			ix, err := a.newIndex()
			if err != nil {
				return err
			}
			g, err := ix.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteGenes([]*genome.Gene{g})
			})
		},
	}
}

func newGeneListCmd(a *app) *cobra.Command {
	var chromosome string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the genes of a chromosome ordered by start",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			chromosomeID, err := parseID("chromosome", chromosome)
			if err != nil {
				return err
			}
			ix, err := a.newIndex()
			if err != nil {
				return err
			}
			genes, err := ix.ListByChromosome(cmd.Context(), chromosomeID)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteGenes(genes)
			})
		},
	}
	cmd.Flags().StringVar(&chromosome, "chromosome", "", "chromosome id")
	_ = cmd.MarkFlagRequired("chromosome")
	return cmd
}

func newGeneSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <symbol-fragment>",
		Short: "Find genes whose symbol contains a fragment, ignoring case",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := a.newIndex()
			if err != nil {
				return err
			}
			genes, err := ix.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteGenes(genes)
			})
		},
	}
}

func newGeneUpdateCmd(a *app) *cobra.Command {
	var f geneFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a gene",
		Long: `Change only the given fields of a gene.

The resulting interval is not re-checked: an update may leave start >= end
or end beyond the chromosome length. A warning is logged for an empty or
inverted interval.`,
		Args: withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gene", args[0])
			if err != nil {
				return err
			}

			var u genome.GeneUpdate
			flags := cmd.Flags()
			if flags.Changed("chromosome") {
				chromosomeID, err := parseID("chromosome", f.chromosome)
				if err != nil {
					return err
				}
				u.ChromosomeID = &chromosomeID
			}
			if flags.Changed("symbol") {
				u.Symbol = &f.symbol
			}
			if flags.Changed("start") {
				u.Start = &f.start
			}
			if flags.Changed("end") {
				u.End = &f.end
			}
			if flags.Changed("strand") {
				strand := genome.Strand(f.strand)
				u.Strand = &strand
			}

			ix, err := a.newIndex()
			if err != nil {
				return err
			}
			g, err := ix.Update(cmd.Context(), id, u)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteGenes([]*genome.Gene{g})
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newGeneDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a gene",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gene", args[0])
			if err != nil {
				return err
			}
			ix, err := a.newIndex()
			if err != nil {
				return err
			}
			deleted, err := ix.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("gene %d: %w", id, genome.ErrNotFound)
			}
			fmt.Fprintf(a.stderr, "Deleted gene %d\n", id)
			return nil
		},
	}
}

func newGeneSequenceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Read or replace the sequence stored on a gene",
		Long: `A gene's sequence is stored on the gene itself. It is not derived from
the chromosome sequence and does not change when that sequence is replaced.`,
	}

	get := &cobra.Command{
		Use:   "get <gene-id>",
		Short: "Print a gene's stored sequence",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gene", args[0])
			if err != nil {
				return err
			}
			repo, err := a.openStore()
			if err != nil {
				return err
			}
			seq, err := sequence.NewGeneView(repo).Sequence(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteSequence(seq)
			})
		},
	}

	var seqFile string
	set := &cobra.Command{
		Use:   "set <gene-id> [sequence]",
		Short: "Replace a gene's sequence; it must span the gene exactly",
		Args:  withUsage(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("gene", args[0])
			if err != nil {
				return err
			}
			var inline string
			if len(args) == 2 {
				inline = args[1]
			}
			seq, err := a.readSequence(inline, seqFile)
			if err != nil {
				return err
			}
			repo, err := a.openStore()
			if err != nil {
				return err
			}
			g, err := sequence.NewGeneView(repo).Replace(cmd.Context(), id, seq)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteGenes([]*genome.Gene{g})
			})
		},
	}
	set.Flags().StringVar(&seqFile, "file", "", "read the sequence from a raw or FASTA file ('-' for stdin)")

	cmd.AddCommand(get, set)
	return cmd
}
