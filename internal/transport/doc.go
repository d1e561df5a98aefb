// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// In-process transport layer. It owns sessions and produces their
// readiness signals from a reactor, standing in for a network listener
// when driving executors in tests and in the hioload-exec CLI.

package transport
