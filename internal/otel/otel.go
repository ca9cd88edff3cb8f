//go:build !no_otel

// Package otel wraps the OpenTelemetry tracer so that binaries can be
// built without the dependency using the no_otel build tag.
package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
