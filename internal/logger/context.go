package logger

import (
	"context"

	"go.uber.org/zap"
)

type (
	fieldsKey    struct{}
	requestIDKey struct{}
)

// With returns a ctx whose FromCtx logger carries fields on top of any
// attached further up the chain.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	prev := fieldsFrom(ctx)
	merged := make([]zap.Field, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// WithRequestID stores id for RequestIDFrom and tags the ctx logger with it.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey{}, id)
	return With(ctx, zap.String("request_id", id))
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func FromCtx(ctx context.Context) *zap.Logger {
	fields := fieldsFrom(ctx)
	if len(fields) == 0 {
		return L()
	}
	return L().With(fields...)
}

func fieldsFrom(ctx context.Context) []zap.Field {
	fields, _ := ctx.Value(fieldsKey{}).([]zap.Field)
	return fields
}
