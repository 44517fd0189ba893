// Package prometheus renders jwtgen metrics in Prometheus text exposition format.
//
// Families:
//
//	jwtgen_issue_attempts_total{outcome="issued"|"<error kind>"}
//	jwtgen_issued_by_algorithm_total{alg="HS256"|...}
//	jwtgen_issue_latency_seconds (histogram, when enabled on the issuer)
//	jwtgen_audit_dropped_total
//
// Callers mount [PrometheusExporter.Handler]; nothing is registered globally.
package prometheus
