// Package logging provides structured, context-aware logging for deployd.
//
// It wraps Zap with a custom trace level, context correlation fields
// (session ID, workflow phase, request ID), and test observation helpers.
//
// Usage:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg)
//	if err != nil { ... }
//	defer logger.Sync()
//
//	ctx = logging.ContextWithSessionID(ctx, sessionID)
//	logger.Info(ctx, "phase committed", zap.String("phase", "planning"))
package logging
