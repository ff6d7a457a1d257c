package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inodb/genomebank/internal/analysis"
	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/loader"
	"github.com/inodb/genomebank/internal/output"
)

func newAnalysisCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analysis",
		Short: "Query genes by range and summarize chromosome sequences",
	}
	cmd.AddCommand(
		newAnalysisGenesCmd(a),
		newAnalysisStatsCmd(a),
		newAnalysisReportCmd(a),
	)
	return cmd
}

func newAnalysisGenesCmd(a *app) *cobra.Command {
	var (
		chromosome string
		start, end int64
		regions    string
	)
	cmd := &cobra.Command{
		Use:   "genes",
		Short: "List genes overlapping a range or the regions of a BED file",
		Long: `List the genes overlapping the half-open range [start, end) on a
chromosome, ordered by start position then id.

With --regions, every region of a BED file is queried against the chromosome
named in its first column. Genes are printed per region in file order.`,
		Example: `  genomebank analysis genes --chromosome 1 --start 1000 --end 5000
  genomebank analysis genes --regions targets.bed`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newAnalysis()
			if err != nil {
				return err
			}

			if regions != "" {
				if cmd.Flags().Changed("chromosome") || cmd.Flags().Changed("start") || cmd.Flags().Changed("end") {
					return usageError{cmd: cmd.CommandPath(),
						err: fmt.Errorf("--regions cannot be combined with --chromosome, --start or --end")}
				}
				ranges, err := a.genesInRegions(cmd, svc, regions)
				if err != nil {
					return err
				}
				return a.write(func(w output.Writer) error {
					return w.WriteGeneRanges(ranges)
				})
			}

			for _, name := range []string{"chromosome", "start", "end"} {
				if !cmd.Flags().Changed(name) {
					return usageError{cmd: cmd.CommandPath(),
						err: fmt.Errorf("--%s is required unless --regions is given", name)}
				}
			}
			chromosomeID, err := parseID("chromosome", chromosome)
			if err != nil {
				return err
			}
			ranges, err := svc.GenesInRange(cmd.Context(), chromosomeID, start, end)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteGeneRanges(ranges)
			})
		},
	}
	cmd.Flags().StringVar(&chromosome, "chromosome", "", "chromosome id")
	cmd.Flags().Int64Var(&start, "start", 0, "0-based start, inclusive")
	cmd.Flags().Int64Var(&end, "end", 0, "0-based end, exclusive")
	cmd.Flags().StringVar(&regions, "regions", "", "BED file of regions, plain or compressed")
	return cmd
}

// genesInRegions runs one batch query per chromosome named in a BED file and
// returns the results concatenated in file order.
func (a *app) genesInRegions(cmd *cobra.Command, svc *analysis.Service, path string) ([]analysis.GeneRange, error) {
	f, err := loader.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	regions, err := loader.ParseBED(f)
	if err != nil {
		return nil, err
	}

	// Group region positions by chromosome, keeping first-seen order.
	type group struct {
		positions []int
		intervals []genome.Interval
	}
	groups := make(map[string]*group)
	var names []string
	for i, r := range regions {
		g, ok := groups[r.Chrom]
		if !ok {
			g = &group{}
			groups[r.Chrom] = g
			names = append(names, r.Chrom)
		}
		g.positions = append(g.positions, i)
		g.intervals = append(g.intervals, r.Interval)
	}

	perRegion := make([][]analysis.GeneRange, len(regions))
	for _, name := range names {
		c, err := a.repo.FindChromosomeByName(cmd.Context(), name)
		if err != nil {
			return nil, err
		}
		g := groups[name]
		batch, err := svc.GenesInRegions(cmd.Context(), c.ID, g.intervals)
		if err != nil {
			return nil, fmt.Errorf("regions on %s: %w", name, err)
		}
		for j, pos := range g.positions {
			perRegion[pos] = batch[j]
		}
	}

	var result []analysis.GeneRange
	for _, rs := range perRegion {
		result = append(result, rs...)
	}
	return result, nil
}

func newAnalysisStatsCmd(a *app) *cobra.Command {
	var chromosome string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show base composition, GC percentage and gene count of a chromosome",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			chromosomeID, err := parseID("chromosome", chromosome)
			if err != nil {
				return err
			}
			svc, err := a.newAnalysis()
			if err != nil {
				return err
			}
			stats, err := svc.SequenceStats(cmd.Context(), chromosomeID)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteStats([]*analysis.SequenceStats{stats})
			})
		},
	}
	cmd.Flags().StringVar(&chromosome, "chromosome", "", "chromosome id")
	_ = cmd.MarkFlagRequired("chromosome")
	return cmd
}

func newAnalysisReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show sequence statistics for every chromosome that has a sequence",
		Long: `Compute sequence statistics for all chromosomes in parallel, using up to
"workers" goroutines. Chromosomes without a sequence are skipped.`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newAnalysis()
			if err != nil {
				return err
			}
			stats, err := svc.Report(cmd.Context())
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteStats(stats)
			})
		},
	}
}
