package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/backend-tax/internal/seed"
	"github.com/noah-isme/backend-tax/internal/tax"
	"github.com/noah-isme/backend-tax/internal/taxonomy"
)

type treeLister interface {
	ListSections(ctx context.Context) ([]taxonomy.Node, error)
	ListSubsections(ctx context.Context, sectionID string) ([]taxonomy.Node, error)
	ListCategories(ctx context.Context, subsectionID string) ([]taxonomy.Node, error)
	ListSubcategories(ctx context.Context, categoryID string) ([]taxonomy.Subcategory, error)
}

type calculator interface {
	ComputeTax(ctx context.Context, req tax.Request) (tax.Breakdown, error)
}

// backend lazily opens the services a command needs; close releases them.
type backend struct {
	taxonomy   func(ctx context.Context) (treeLister, func(), error)
	calculator func(ctx context.Context) (calculator, func(), error)
	flushCache func(ctx context.Context) (int, error)
}

func newRootCmd(b backend) *cobra.Command {
	root := &cobra.Command{
		Use:           "taxctl",
		Short:         "Inspect withholding tax reference data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTreeCmd(b), newComputeCmd(b), newCacheCmd(b), newValidateCmd())
	return root
}

func newTreeCmd(b backend) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [sectionId]",
		Short: "Print the taxonomy tree with rates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := b.taxonomy(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			only := ""
			if len(args) == 1 {
				only = args[0]
			}
			return printTree(cmd.Context(), cmd.OutOrStdout(), svc, only)
		},
	}
}

func newComputeCmd(b backend) *cobra.Command {
	var req tax.Request
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute withholding tax for a subcategory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := b.calculator(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			out, err := svc.ComputeTax(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&req.SubcategoryID, "subcategory", "", "Subcategory id")
	cmd.Flags().StringVar(&req.FilerStatus, "status", "filer", "Filer status: filer or non-filer")
	cmd.Flags().StringVar(&req.GrossAmount, "amount", "", "Gross amount")
	_ = cmd.MarkFlagRequired("subcategory")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newCacheCmd(b backend) *cobra.Command {
	cache := &cobra.Command{Use: "cache", Short: "Manage the taxonomy cache"}
	cache.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Remove cached taxonomy listings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := b.flushCache(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d keys\n", n)
			return nil
		},
	})
	return cache
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-fixture <path>",
		Short: "Check a taxonomy seed fixture without touching the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}
			sections, subsections, categories, subcategories := fx.Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d sections, %d subsections, %d categories, %d subcategories\n",
				sections, subsections, categories, subcategories)
			return nil
		},
	}
}

// printTree walks the tree level by level. When only is set, just that section
// is printed.
func printTree(ctx context.Context, w io.Writer, svc treeLister, only string) error {
	sections, err := svc.ListSections(ctx)
	if err != nil {
		return err
	}
	for _, sec := range sections {
		if only != "" && sec.ID != only {
			continue
		}
		fmt.Fprintf(w, "%s [%s]\n", sec.Name, sec.ID)
		subsections, err := svc.ListSubsections(ctx, sec.ID)
		if err != nil {
			return err
		}
		for _, sub := range subsections {
			fmt.Fprintf(w, "  %s [%s]\n", sub.Name, sub.ID)
			categories, err := svc.ListCategories(ctx, sub.ID)
			if err != nil {
				return err
			}
			for _, cat := range categories {
				fmt.Fprintf(w, "    %s [%s]\n", cat.Name, cat.ID)
				leaves, err := svc.ListSubcategories(ctx, cat.ID)
				if err != nil {
					return err
				}
				for _, leaf := range leaves {
					nature := strings.TrimSpace(leaf.TaxNature)
					if nature == "" {
						nature = "-"
					}
					fmt.Fprintf(w, "      %s [%s] filer=%s%% non-filer=%s%% nature=%s\n",
						leaf.Name, leaf.ID, leaf.FilerRate, leaf.NonFilerRate, nature)
				}
			}
		}
	}
	return nil
}
