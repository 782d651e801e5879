// SPDX-License-Identifier: BSD-3-Clause

package model

import "time"

// Conductor is a registry row for one live conductor process.
type Conductor struct {
	ID            int64     `json:"id"`
	Hostname      string    `json:"hostname"`
	HardwareTypes []string  `json:"hardware_types"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Offline reports whether the conductor's heartbeat is older than threshold,
// measured against now.
func (c *Conductor) Offline(now time.Time, threshold time.Duration) bool {
	return now.Sub(c.UpdatedAt) > threshold
}
