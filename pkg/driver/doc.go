// SPDX-License-Identifier: BSD-3-Clause

// Package driver defines the capability-based driver façade the conductor
// consumes: a fixed set of named interface slots (power, management, boot,
// deploy, console, vendor, raid, bios, inspect, network, storage), a
// Registry that resolves a driver name to a Bundle, and the step/vendor
// passthru metadata the core enumerates by reflection at registration time.
//
// The core never holds a concrete driver type — only this interface surface
// — so adding a new hardware type means registering a new Bundle, never
// touching the conductor's own code.
package driver
