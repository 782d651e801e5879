// SPDX-License-Identifier: BSD-3-Clause

package mock

import "github.com/metalforge/conductor/pkg/driver"

type inspect struct{ baseInterface }

var _ driver.InspectInterface = (*inspect)(nil)

// Inspect succeeds immediately: there is no real machine behind this
// bundle to discover characteristics from.
func (inspect) Inspect(driver.TaskContext) error { return nil }
