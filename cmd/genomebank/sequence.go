package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/genomebank/internal/output"
)

func newSequenceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sequence",
		Aliases: []string{"seq"},
		Short:   "Read or replace chromosome sequences",
	}
	cmd.AddCommand(newSequenceGetCmd(a), newSequenceSetCmd(a))
	return cmd
}

func newSequenceGetCmd(a *app) *cobra.Command {
	var start, end int64
	cmd := &cobra.Command{
		Use:   "get <chromosome-id>",
		Short: "Print a chromosome sequence or the slice [start, end)",
		Example: `  genomebank sequence get 1
  genomebank sequence get 1 --start 100 --end 110`,
		Args: withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("chromosome", args[0])
			if err != nil {
				return err
			}
			s, err := a.newSequenceStore()
			if err != nil {
				return err
			}

			var seq string
			if cmd.Flags().Changed("start") || cmd.Flags().Changed("end") {
				seq, err = s.Range(cmd.Context(), id, start, end)
			} else {
				seq, err = s.Full(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteSequence(seq)
			})
		},
	}
	cmd.Flags().Int64Var(&start, "start", 0, "0-based start, inclusive")
	cmd.Flags().Int64Var(&end, "end", 0, "0-based end, exclusive")
	return cmd
}

func newSequenceSetCmd(a *app) *cobra.Command {
	var seqFile string
	cmd := &cobra.Command{
		Use:   "set <chromosome-id> [sequence]",
		Short: "Replace a chromosome sequence",
		Long: `Replace the whole sequence of a chromosome. The new sequence must have
exactly the chromosome's declared length.`,
		Example: `  genomebank sequence set 1 ACGTACGT
  genomebank sequence set 1 --file chr1.fa.gz`,
		Args: withUsage(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("chromosome", args[0])
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

			s, err := a.newSequenceStore()
			if err != nil {
				return err
			}
			c, err := s.Replace(cmd.Context(), id, seq)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "Replaced sequence of %s (%d bases, checksum %s)\n", c.Name, c.Length, c.Checksum)
			return nil
		},
	}
	cmd.Flags().StringVar(&seqFile, "file", "", "read the sequence from a raw or FASTA file ('-' for stdin)")
	return cmd
}
