package logger_test

import (
	"context"
	"io"
	"os"

	"github.com/philipp01105/tenantlog/formatter"
	"github.com/philipp01105/tenantlog/handler"
	"github.com/philipp01105/tenantlog/logger"
	"github.com/philipp01105/tenantlog/tenant"
)

// Log through the default logger; the tenant bound to ctx picks the handler.
func Example() {
	engine, _ := tenant.NewEngine(tenant.EngineConfig{})
	defer engine.Close()

	tc, _ := engine.NewContext(tenant.Config{
		ID: "acme",
		LogHandler: handler.NewStreamHandler(handler.StreamConfig{
			Writer: os.Stdout,
			Formatter: formatter.NewTextFormatter(formatter.Config{
				TimestampFormat: "-",
			}),
		}),
	})

	ctx := tenant.Enter(context.Background(), tc)
	logger.Info(ctx, "User login", logger.String("username", "alice"))

	// Nothing is bound here, so this entry goes nowhere.
	logger.Info(context.Background(), "dropped")
	// Output:
	// - [INFO] User login username=alice
}

// Create a custom Logger with the Builder pattern.
func ExampleNewBuilder() {
	sh := handler.NewStreamHandler(handler.StreamConfig{
		Writer: io.Discard,
		Formatter: formatter.NewTextFormatter(formatter.Config{
			IncludeCaller: true,
		}),
	})

	log := logger.NewBuilder().
		WithHandler(sh).
		WithLevel(logger.DebugLevel).
		WithCaller(true).
		WithFields(logger.String("service", "api")).
		Build()

	ctx := context.Background()
	log.Info(ctx, "ready", logger.Int("port", 8080))
	log.Close(ctx)
}

// Use With to create a child logger with persistent context fields.
func ExampleLogger_With() {
	log := logger.NewBuilder().
		WithHandler(handler.NewStreamHandler(handler.StreamConfig{Writer: io.Discard})).
		Build()

	reqLog := log.With(
		logger.String("request_id", "req-12345"),
		logger.String("method", "GET"),
	)

	ctx := context.Background()
	reqLog.Info(ctx, "Processing request", logger.String("path", "/api/users"))
	reqLog.Info(ctx, "Request completed", logger.Int("status", 200))
	log.Close(ctx)
}
