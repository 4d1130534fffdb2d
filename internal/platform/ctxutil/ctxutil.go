// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil reads and writes the request-scoped values of the catalog
// API: the request id, the enriched request logger and the caller identity.
//
// Handlers add attributes to the request logger as they learn what a request
// is about (the caller, the place kind). Every later log line of the request,
// including the error envelope written by respond, then carries them.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/yatra/internal/platform/ctxkey"
	"github.com/taibuivan/yatra/internal/platform/sec"
)

// AnonymousActor names the caller of an unauthenticated request in logs.
const AnonymousActor = "anonymous"

// # Request Tracing

// WithRequestID attaches the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// RequestID returns the request id, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger attaches the request logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// Logger returns the request logger, or [slog.Default] outside a request.
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithLogAttrs replaces the request logger with one that also carries attrs.
func WithLogAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return WithLogger(ctx, Logger(ctx).With(args...))
}

// # Identity & Access

// WithAuthUser attaches the verified token claims and tags the request
// logger with the caller.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	ctx = context.WithValue(ctx, ctxkey.KeyUser, user)
	if user == nil {
		return ctx
	}
	return WithLogAttrs(ctx, slog.String("user_id", user.UserID), slog.String("role", user.Role))
}

// AuthUser returns the verified claims, or nil for anonymous requests.
func AuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	return claims
}

// Actor names the caller for audit-style log lines.
func Actor(ctx context.Context) string {
	if claims := AuthUser(ctx); claims != nil && claims.UserID != "" {
		return claims.UserID
	}
	return AnonymousActor
}
