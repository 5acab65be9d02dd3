/*
Package observability provides Prometheus metrics for controller compilation
and instance execution.

Metrics are fed through domain.LifecycleHooks, so any component that accepts
hooks (the compiler facade, the controller builder, the strategies, the
simulator) can be instrumented without depending on this package.
*/
package observability
