package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newRegionsCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List regions available in the route source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := global.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			regions, err := e.repo.ListRegions(cmd.Context())
			if err != nil {
				return err
			}
			sort.Slice(regions, func(i, j int) bool { return regions[i].Name < regions[j].Name })

			fmt.Fprintln(cmd.OutOrStdout(), renderRegions(regions))
			return nil
		},
	}
}
