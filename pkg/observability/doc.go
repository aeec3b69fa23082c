/*
Package observability exposes the agent's Prometheus metrics.

Metrics are fed through domain.LifecycleHooks, so the dialog and the
pipeline stay unaware of Prometheus. Each Metrics value owns its registry;
serve it with Handler.
*/
package observability
