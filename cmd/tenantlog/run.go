package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/tenantlog/config"
	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/delegate"
	"github.com/philipp01105/tenantlog/handler"
	"github.com/philipp01105/tenantlog/logger"
	"github.com/philipp01105/tenantlog/logrussink"
	"github.com/philipp01105/tenantlog/slogsink"
	"github.com/philipp01105/tenantlog/tenant"
	"github.com/philipp01105/tenantlog/zapsink"
	"github.com/philipp01105/tenantlog/zerologsink"
)

// emitter writes one demo record in the tenant bound to ctx.
type emitter func(ctx context.Context, tenantID string, seq int)

var emitters = map[string]emitter{
	"logger": func(ctx context.Context, id string, seq int) {
		logger.Info(ctx, "demo record", logger.Tenant(id), logger.Int("seq", seq))
	},
	"slog": func(ctx context.Context, id string, seq int) {
		slog.New(slogsink.New(delegate.Default(), core.DebugLevel)).
			InfoContext(ctx, "demo record", "tenant", id, "seq", seq)
	},
	"zap": func(ctx context.Context, id string, seq int) {
		zapsink.Logger(ctx, delegate.Default(), zapcore.DebugLevel).
			Info("demo record", zap.String("tenant", id), zap.Int("seq", seq))
	},
	"logrus": func(ctx context.Context, id string, seq int) {
		logrusLogger.WithContext(ctx).
			WithFields(logrus.Fields{"tenant": id, "seq": seq}).
			Info("demo record")
	},
	"zerolog": func(ctx context.Context, id string, seq int) {
		l := zerologsink.Logger(ctx, delegate.Default(), zerolog.DebugLevel)
		l.Info().Str("tenant", id).Int("seq", seq).Msg("demo record")
	},
}

var logrusLogger = logrussink.NewLogger(delegate.Default(), logrus.DebugLevel)

type runOptions struct {
	via   string
	count int
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Emit demo records in every tenant concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			emit, ok := emitters[opts.via]
			if !ok {
				return fmt.Errorf("unknown front end %q (want logger, slog, zap, logrus or zerolog)", opts.via)
			}
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			rt, err := config.Build(cfg, config.Streams{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}

			diag := root.diagnostics(cmd.ErrOrStderr())
			contexts := rt.Engine.Contexts()
			diag.Debug("emitting", "tenants", len(contexts), "count", opts.count, "via", opts.via)

			var (
				wg     sync.WaitGroup
				mu     sync.Mutex
				errAll error
			)
			for _, tc := range contexts {
				wg.Add(1)
				go func(tc *tenant.Context) {
					defer wg.Done()
					ctx := tenant.Enter(cmd.Context(), tc)
					for i := 0; i < opts.count; i++ {
						if ctx.Err() != nil {
							return
						}
						emit(ctx, tc.ID(), i)
					}
					if err := delegate.Default().Flush(ctx); err != nil {
						mu.Lock()
						errAll = multierr.Append(errAll, fmt.Errorf("flush %s: %w", tc.ID(), err))
						mu.Unlock()
					}
				}(tc)
			}
			wg.Wait()

			out := cmd.OutOrStdout()
			for _, tc := range contexts {
				if sp, ok := tc.LogHandler().(handler.StatsProvider); ok {
					s := sp.Stats()
					diag.Info("delivered", "tenant", tc.ID(), "processed", s.ProcessedTotal, "dropped", s.Dropped())
				}
			}
			ids := make([]string, 0, len(rt.Memory))
			for id := range rt.Memory {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				name := id
				if name == "" {
					name = "(shared)"
				}
				fmt.Fprintf(out, "%s: %d records in memory\n", name, len(rt.Memory[id].Entries()))
			}

			return multierr.Append(errAll, rt.Engine.Close())
		},
	}
	cmd.Flags().StringVar(&opts.via, "via", "logger", "front end to log through: logger, slog, zap, logrus or zerolog")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 10, "records per tenant")
	return cmd
}
