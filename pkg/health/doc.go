/*
Package health provides reusable health-check primitives (Checker,
HTTPChecker, TCPChecker) plus the /health, /ready, /metrics HTTP server
siloflow's Control Service and Ingress Worker processes expose.

Checker/Result are domain-agnostic, and Server composes concrete
checkers (plus ad-hoc closures where no generic Checker fits, like
raft leadership) into a set of named ReadinessCheck functions to
answer /ready, following the liveness/readiness split in the teacher's
health server.
*/
package health
