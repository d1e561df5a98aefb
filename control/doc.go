// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, hot-reload, runtime metrics and debug introspection for
// hioload-exec.
//
// Provides:
//   - Config loading from file, environment and flags with validation
//   - A reload-aware ConfigStore fed by file watching
//   - Prometheus telemetry for executors
//   - State export through registered debug probes
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
