// Package logging provides the application's slog loggers.
//
// Services log JSON to stdout (NewLogger); the CLI logs text to stderr
// (NewTextLogger). Each pipeline run carries a run_id attribute:
//
//	logger := logging.WithRunID(slog.Default(), logging.NewRunID())
//	ctx = logging.WithLogger(ctx, logger)
//	logging.FromContext(ctx).Info("run started")
package logging
