// Package otel provides OpenTelemetry metric exporter bindings for jwtgen.
//
// [NewOTelExporter] registers one observable instrument per metric family and a
// single callback that reads [jwtgen.Issuer.MetricsSnapshot] on each
// collection cycle. Issuance attempts are one counter with an "outcome"
// attribute, issued tokens one counter with an "alg" attribute.
//
// Callers supply the Meter; the exporter never owns a MeterProvider.
package otel
