package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/output"
)

func newFunctionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "function",
		Aliases: []string{"fn"},
		Short:   "Manage functional terms and their gene associations",
	}
	cmd.AddCommand(
		newFunctionCreateCmd(a),
		newFunctionGetCmd(a),
		newFunctionListCmd(a),
		newFunctionSearchCmd(a),
		newFunctionUpdateCmd(a),
		newFunctionDeleteCmd(a),
		newFunctionAssociateCmd(a),
		newFunctionDissociateCmd(a),
		newFunctionAssociationsCmd(a),
	)
	return cmd
}

func newFunctionCreateCmd(a *app) *cobra.Command {
	var f genome.Function
	var category string
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a functional term",
		Example: `  genomebank function create --code GO:0003924 --name "GTPase activity" --category MF`,
		Args:    withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Category = genome.Category(category)
			if err := f.Validate(); err != nil {
				return err
			}
			repo, err := a.openStore()
			if err != nil {
				return err
			}
			created := f
			if err := repo.CreateFunction(cmd.Context(), &created); err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteFunctions([]*genome.Function{&created})
			})
		},
	}
	cmd.Flags().StringVar(&f.Code, "code", "", "unique term code, e.g. GO:0003924")
	cmd.Flags().StringVar(&f.Name, "name", "", "term name")
	cmd.Flags().StringVar(&category, "category", "", "category: BP, MF or CC")
	cmd.Flags().StringVar(&f.Description, "description", "", "free-text description")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newFunctionListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List functional terms",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openStore()
			if err != nil {
				return err
			}
			functions, err := repo.ListFunctions(cmd.Context())
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteFunctions(functions)
			})
		},
	}
}

func newFunctionGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a functional term",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("function", args[0])
			if err != nil {
				return err
			}
			repo, err := a.openStore()
			if err != nil {
				return err
			}
			f, err := repo.FindFunction(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteFunctions([]*genome.Function{f})
			})
		},
	}
}

func newFunctionSearchCmd(a *app) *cobra.Command {
	var code, category string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find functional terms by code fragment or by category",
		Example: `  genomebank function search --code 0003
  genomebank function search --category MF`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (code == "") == (category == "") {
				return usageError{cmd: cmd.CommandPath(),
					err: fmt.Errorf("exactly one of --code or --category is required")}
			}
			repo, err := a.openStore()
			if err != nil {
				return err
			}

			var functions []*genome.Function
			if code != "" {
				functions, err = repo.SearchFunctionsByCode(cmd.Context(), code)
			} else {
				var c genome.Category
				if c, err = genome.ParseCategory(category); err != nil {
					return err
				}
				functions, err = repo.ListFunctionsByCategory(cmd.Context(), c)
			}
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteFunctions(functions)
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "case-insensitive code fragment")
	cmd.Flags().StringVar(&category, "category", "", "category: BP, MF or CC")
	return cmd
}

func newFunctionUpdateCmd(a *app) *cobra.Command {
	var code, name, category, description string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a functional term",
		Long: `Change only the given fields of a functional term. The resulting term
must still be valid, and its code must not belong to another term.`,
		Args: withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("function", args[0])
			if err != nil {
				return err
			}

			var u genome.FunctionUpdate
			flags := cmd.Flags()
			if flags.Changed("code") {
				u.Code = &code
			}
			if flags.Changed("name") {
				u.Name = &name
			}
			if flags.Changed("category") {
				c := genome.Category(category)
				u.Category = &c
			}
			if flags.Changed("description") {
				u.Description = &description
			}

			repo, err := a.openStore()
			if err != nil {
				return err
			}
			f, err := repo.FindFunction(cmd.Context(), id)
			if err != nil {
				return err
			}
			u.Apply(f)
			if err := f.Validate(); err != nil {
				return err
			}
			if err := repo.SaveFunction(cmd.Context(), f); err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteFunctions([]*genome.Function{f})
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "new unique code")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&category, "category", "", "new category: BP, MF or CC")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	return cmd
}

func newFunctionDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a functional term and its gene associations",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("function", args[0])
			if err != nil {
				return err
			}
			repo, err := a.openStore()
			if err != nil {
				return err
			}
			deleted, err := repo.DeleteFunction(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("function %d: %w", id, genome.ErrNotFound)
			}
			fmt.Fprintf(a.stderr, "Deleted function %d\n", id)
			return nil
		},
	}
}

func newFunctionAssociateCmd(a *app) *cobra.Command {
	var evidence string
	cmd := &cobra.Command{
		Use:   "associate <gene-id> <function-id>",
		Short: "Link a gene to a functional term",
		Args:  withUsage(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			geneID, functionID, err := parsePair(args)
			if err != nil {
				return err
			}
			if err := genome.ValidateEvidence(evidence); err != nil {
				return err
			}
			repo, err := a.openStore()
			if err != nil {
				return err
			}
			assoc, err := repo.Associate(cmd.Context(), geneID, functionID, evidence)
			if err != nil {
				return err
			}
			return a.write(func(w output.Writer) error {
				return w.WriteAssociations([]*genome.Association{assoc})
			})
		},
	}
	cmd.Flags().StringVar(&evidence, "evidence", "", "evidence code, e.g. IDA")
	return cmd
}

func newFunctionDissociateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dissociate <gene-id> <function-id>",
		Short: "Remove the link between a gene and a functional term",
		Args:  withUsage(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			geneID, functionID, err := parsePair(args)
			if err != nil {
				return err
			}
			repo, err := a.openStore()
			if err != nil {
				return err
			}
			removed, err := repo.Dissociate(cmd.Context(), geneID, functionID)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("gene %d, function %d: association %w", geneID, functionID, genome.ErrNotFound)
			}
			fmt.Fprintf(a.stderr, "Removed association of gene %d with function %d\n", geneID, functionID)
			return nil
		},
	}
}

func newFunctionAssociationsCmd(a *app) *cobra.Command {
	var gene, function string
	cmd := &cobra.Command{
		Use:   "associations",
		Short: "List the associations of a gene or of a functional term",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (gene == "") == (function == "") {
				return usageError{cmd: cmd.CommandPath(),
					err: fmt.Errorf("exactly one of --gene or --function is required")}
			}
			repo, err := a.openStore()
			if err != nil {
				return err
			}

			var assocs []*genome.Association
			if gene != "" {
				id, err := parseID("gene", gene)
				if err != nil {
					return err
				}
				assocs, err = repo.ListAssociationsByGene(cmd.Context(), id)
				if err != nil {
					return err
				}
			} else {
				id, err := parseID("function", function)
				if err != nil {
					return err
				}
				assocs, err = repo.ListAssociationsByFunction(cmd.Context(), id)
				if err != nil {
					return err
				}
			}
			return a.write(func(w output.Writer) error {
				return w.WriteAssociations(assocs)
			})
		},
	}
	cmd.Flags().StringVar(&gene, "gene", "", "gene id")
	cmd.Flags().StringVar(&function, "function", "", "function id")
	return cmd
}

func parsePair(args []string) (geneID, functionID int64, err error) {
	if geneID, err = parseID("gene", args[0]); err != nil {
		return 0, 0, err
	}
	if functionID, err = parseID("function", args[1]); err != nil {
		return 0, 0, err
	}
	return geneID, functionID, nil
}
