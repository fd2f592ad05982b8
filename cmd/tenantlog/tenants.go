package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/philipp01105/tenantlog/config"
	"github.com/philipp01105/tenantlog/handler"
)

func newTenantsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tenants",
		Short: "List the tenants and the handler each one resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			rt, err := config.Build(cfg, config.Streams{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer rt.Engine.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TENANT\tHANDLER\tSHARED")
			shared := rt.Engine.LogHandler()
			for _, tc := range rt.Engine.Contexts() {
				h := tc.LogHandler()
				name := "none"
				if h != nil {
					name = fmt.Sprintf("%T", h)
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\n", tc.ID(), name, handler.SameSink(h, shared))
			}
			return tw.Flush()
		},
	}
}
