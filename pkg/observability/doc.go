/*
Package observability turns engine lifecycle events into logs and Prometheus metrics.

Every helper returns a domain.LifecycleHooks value; Combine fans one event out to
several hook sets so logging and metrics can be attached to the same engine.
*/
package observability
