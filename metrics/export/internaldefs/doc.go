// Package internaldefs holds the metric families, label keys and bucket bounds
// shared by the Prometheus and OTel exporters.
//
// Issuance counters are exported as one family labelled by outcome, where the
// outcome is "issued" or the jwtgen.ErrorKind of the rejection.
package internaldefs
