/*
Package metrics registers siloflow's Prometheus collectors and exposes
them over HTTP.

All collectors are package-level vars registered in init(), following
the teacher's pattern of a global Prometheus registry with MustRegister
at package load. The counters and histograms here are the error-handling
design's user-visible failure surface: events_parsed, parse_misses,
tasks_ok, tasks_failed{reason}, upload_retries, queue_redeliveries, plus
a registry raft-leadership gauge and latency histograms.

Handler() returns the promhttp handler consumed by pkg/health's /metrics
route. Timer is a small helper for recording operation durations into a
histogram without repeating time.Since boilerplate at every call site.
*/
package metrics
