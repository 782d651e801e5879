// SPDX-License-Identifier: BSD-3-Clause

// Package model defines the conductor's durable entities — Node, Port,
// Portgroup, and Conductor — and the narrow storage interfaces the rest of
// the conductor consumes to read and mutate them. The package owns no
// persistence itself: NodeStore, PortStore, PortgroupStore, and
// ConductorStore are contracts a database-backed adapter must satisfy.
package model
