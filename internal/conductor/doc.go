// SPDX-License-Identifier: BSD-3-Clause

// Package conductor wires the Task Manager, Step Executor, and periodic
// loops into a long-lived process: it registers itself in the conductor
// registry, loads the hash ring, clears stale state left by a prior crash,
// runs two bounded worker pools, and exposes the external RPC surface over
// NATS micro endpoints.
package conductor
