// Package control
// Author: momentics <momentics@gmail.com>
//
// Hot-reload, runtime metrics, configuration control, and debug introspection
// layer of hioload-core.
//
// Provides concurrent-safe state handling primitives including:
//   - Immutable snapshot config reads and atomic updates
//   - Runtime observers for hot-reload
//   - Metrics telemetry, including block pool gauges
//   - State export, debug hooks, and probe registration
package control
