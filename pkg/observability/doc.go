/*
Package observability exposes augtree runs to monitoring systems.

Metrics turns engine lifecycle events into Prometheus counters and
histograms; attach it with augtree.WithLifecycleHooks(m.Hooks()).
*/
package observability
