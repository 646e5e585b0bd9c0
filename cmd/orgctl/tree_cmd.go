package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <plan.yaml>",
		Short: "Print a plan's hierarchy as an indented outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			tree, err := plan.Tree()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := domain.RenderTree(w, tree); err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "\n%d of %d seats allocated, %d remaining\n",
				tree.TotalQuantity(), domain.MaxUsers, domain.RemainingCapacity(tree))
			return err
		},
	}
}
