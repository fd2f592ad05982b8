package config

import (
	"fmt"
	"io"
	"os"

	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/formatter"
	"github.com/philipp01105/tenantlog/handler"
	"github.com/philipp01105/tenantlog/handler/charmhandler"
	"github.com/philipp01105/tenantlog/tenant"
)

// Streams are the process streams destinations of kind stdout and stderr
// write to. Zero fields default to os.Stdout and os.Stderr.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Runtime is the result of Build.
type Runtime struct {
	Engine *tenant.Engine
	// Memory holds the memory destinations by tenant ID. The engine's shared
	// destination, when it is a memory one, is stored under "".
	Memory map[string]*handler.MemoryHandler
}

// Build creates the engine and one execution context per tenant. On error,
// everything created so far is closed.
func Build(cfg *Config, streams Streams) (*Runtime, error) {
	if streams.Stdout == nil {
		streams.Stdout = os.Stdout
	}
	if streams.Stderr == nil {
		streams.Stderr = os.Stderr
	}
	rt := &Runtime{Memory: make(map[string]*handler.MemoryHandler)}

	engineCfg := tenant.EngineConfig{}
	switch cfg.Engine.ErrStream {
	case "stdout":
		engineCfg.ErrWriter = streams.Stdout
	case "none":
	default:
		engineCfg.ErrWriter = streams.Stderr
	}
	if cfg.Engine.Shared != nil {
		h, err := rt.newHandler("", cfg.Engine.Shared, streams)
		if err != nil {
			return nil, fmt.Errorf("engine shared destination: %w", err)
		}
		if h != nil {
			engineCfg.LogHandler = h
		}
	}

	engine, err := tenant.NewEngine(engineCfg)
	if err != nil {
		return nil, err
	}
	rt.Engine = engine

	for i := range cfg.Tenants {
		t := &cfg.Tenants[i]
		tc := tenant.Config{ID: t.ID, Silent: t.Silent}
		if t.Destination != nil && !t.Silent {
			h, err := rt.newHandler(t.ID, t.Destination, streams)
			if err != nil {
				_ = engine.Close()
				return nil, fmt.Errorf("tenant %s: %w", t.ID, err)
			}
			if h == nil {
				tc.Silent = true
			} else {
				tc.LogHandler = h
			}
		}
		if _, err := engine.NewContext(tc); err != nil {
			_ = engine.Close()
			return nil, err
		}
	}
	return rt, nil
}

// newHandler builds the handler chain for d: destination, level filter,
// then async queue. Kind "none" yields a nil handler.
func (rt *Runtime) newHandler(id string, d *Destination, streams Streams) (handler.Handler, error) {
	prefix := d.Prefix
	fcfg := formatter.Config{IncludeCaller: d.Caller, Prefix: prefix}

	var h handler.Handler
	switch d.Kind {
	case "none":
		return nil, nil
	case "stdout", "stderr":
		w := streams.Stdout
		if d.Kind == "stderr" {
			w = streams.Stderr
		}
		h = handler.NewStreamHandler(handler.StreamConfig{
			Writer:    w,
			Formatter: formatter.New(d.Format, fcfg),
		})
	case "file":
		fh, err := handler.NewFileHandler(handler.FileConfig{
			Filename:   d.Path,
			Formatter:  formatter.New(d.Format, fcfg),
			MaxSize:    d.MaxSize,
			MaxBackups: d.MaxBackups,
		})
		if err != nil {
			return nil, err
		}
		h = fh
	case "memory":
		mh := handler.NewMemoryHandler(d.Limit)
		rt.Memory[id] = mh
		h = mh
	case "console":
		h = charmhandler.New(charmhandler.Config{
			Writer:       streams.Stderr,
			Prefix:       prefix,
			Format:       d.Format,
			ReportCaller: d.Caller,
		})
	default:
		return nil, fmt.Errorf("%w: unknown destination kind %q", ErrInvalid, d.Kind)
	}

	if d.Level != "" {
		if level, _ := core.ParseLevel(d.Level); level > core.DebugLevel {
			h = handler.NewLevelFilter(h, level)
		}
	}
	if d.Async {
		acfg := handler.AsyncConfig{BufferSize: d.BufferSize}
		if d.Overflow != "" {
			// Error and above keep blocking so failures are not lost.
			p, err := handler.ParseOverflowPolicy(d.Overflow)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
			}
			acfg.OverflowPolicy = handler.UniformPolicy(p, core.ErrorLevel, handler.Block)
		}
		h = handler.NewAsyncHandler(h, acfg)
	}
	return h, nil
}
