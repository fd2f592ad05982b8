package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/philipp01105/tenantlog/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
)

type rootOptions struct {
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "tenantlog",
		Short: "Route log records to per-tenant handlers",
		Long: `tenantlog builds the execution contexts described in a tenants file
and routes every log record to the handler of the tenant it was emitted in.

Examples:
  tenantlog validate --config tenants.yaml
  tenantlog tenants --config tenants.yaml
  tenantlog run --config tenants.yaml --via slog --count 100`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "tenants.yaml", "tenants file (yaml, toml or json)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newTenantsCmd(opts))
	cmd.AddCommand(newRunCmd(opts))
	return cmd
}

// diagnostics returns the CLI's own logger. It writes to the command's error
// stream and never goes through the delegation sink.
func (o *rootOptions) diagnostics(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Prefix: "tenantlog"})
	if o.verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	diag := o.diagnostics(cmd.ErrOrStderr())
	diag.Debug("loading tenants file", "path", o.cfgFile)
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}
	diag.Debug("tenants file loaded", "tenants", len(cfg.Tenants))
	return cfg, nil
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a tenants file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d tenants)\n", opts.cfgFile, len(cfg.Tenants))
			return nil
		},
	}
}
