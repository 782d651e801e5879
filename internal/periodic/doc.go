// SPDX-License-Identifier: BSD-3-Clause

// Package periodic runs the Conductor Service's background reconciliation
// loops: power-state sync, deploy/clean/inspect timeout sweeping, orphan
// recovery from dead conductors, active-node takeover/rebalancing, and an
// optional sensor data shipper. Every loop shares the same tick skeleton in
// runner.go: enumerate candidate nodes, filter to the ones this conductor
// owns on the hash ring, fan out bounded by a per-tick worker cap, and keep
// ticking even when an individual node's work fails.
package periodic
