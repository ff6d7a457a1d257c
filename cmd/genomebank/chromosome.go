package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/output"
)

func newChromosomeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chromosome",
		Aliases: []string{"chr"},
		Short:   "Create, list, update and delete chromosomes",
	}
	cmd.AddCommand(
		newChromosomeCreateCmd(a),
		newChromosomeGetCmd(a),
		newChromosomeListCmd(a),
		newChromosomeUpdateCmd(a),
		newChromosomeDeleteCmd(a),
	)
	return cmd
}

func newChromosomeCreateCmd(a *app) *cobra.Command {
	var (
		length  int64
		seq     string
		seqFile string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a chromosome",
		Long: `Create a chromosome with a declared length and an optional sequence.
When a sequence is given its length must equal --length; if --length is
omitted it is taken from the sequence.`,
		Example: `  genomebank chromosome create chrM --length 16569
  genomebank chromosome create chr21 --sequence-file chr21.fa.gz`,
		Args: withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSequenceStore()
			if err != nil {
				return err
			}
			text, err := a.readSequence(seq, seqFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("length") {
				length = int64(len(text))
			}
			c, err := s.Create(cmd.Context(), args[0], length, text)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteChromosomes([]*genome.Chromosome{c})
			})
		},
	}
	cmd.Flags().Int64Var(&length, "length", 0, "declared length in bases")
	cmd.Flags().StringVar(&seq, "sequence", "", "sequence text")
	cmd.Flags().StringVar(&seqFile, "sequence-file", "", "read the sequence from a raw or FASTA file ('-' for stdin)")
	return cmd
}

func newChromosomeGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a chromosome",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("chromosome", args[0])
			if err != nil {
				return err
			}
			s, err := a.newSequenceStore()
			if err != nil {
				return err
			}
			c, err := s.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteChromosomes([]*genome.Chromosome{c})
			})
		},
	}
}

func newChromosomeListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all chromosomes",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSequenceStore()
			if err != nil {
				return err
			}
			chromosomes, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteChromosomes(chromosomes)
			})
		},
	}
}

func newChromosomeUpdateCmd(a *app) *cobra.Command {
	var (
		name   string
		length int64
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a chromosome or change its declared length",
		Long: `Update the given fields of a chromosome. A new length is not checked
against the stored sequence or the chromosome's genes.`,
		Args: withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("chromosome", args[0])
			if err != nil {
				return err
			}
			var u genome.ChromosomeUpdate
			if cmd.Flags().Changed("name") {
				u.Name = &name
			}
			if cmd.Flags().Changed("length") {
				u.Length = &length
			}

			s, err := a.newSequenceStore()
			if err != nil {
				return err
			}
			c, err := s.Update(cmd.Context(), id, u)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteChromosomes([]*genome.Chromosome{c})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().Int64Var(&length, "length", 0, "new declared length")
	return cmd
}

func newChromosomeDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chromosome with its genes",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("chromosome", args[0])
			if err != nil {
				return err
			}
			s, err := a.newSequenceStore()
			if err != nil {
				return err
			}
			deleted, err := s.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("chromosome %d: %w", id, genome.ErrNotFound)
			}
			fmt.Fprintf(a.stderr, "Deleted chromosome %d\n", id)
			return nil
		},
	}
}
