/*
Package observability turns engine lifecycle events into Prometheus metrics
and structured log lines.

Both are exposed as domain.LifecycleHooks so they compose with any other
hooks through walkthrough.WithLifecycleHooks.
*/
package observability
