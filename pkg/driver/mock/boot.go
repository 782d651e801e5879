// SPDX-License-Identifier: BSD-3-Clause

package mock

import "github.com/metalforge/conductor/pkg/driver"

type boot struct{ baseInterface }

var _ driver.BootInterface = (*boot)(nil)

func (boot) PrepareRamdisk(driver.TaskContext, map[string]any) error { return nil }
func (boot) PrepareInstance(driver.TaskContext) error                { return nil }
func (boot) CleanUpInstance(driver.TaskContext) error                { return nil }
func (boot) CleanUpRamdisk(driver.TaskContext) error                  { return nil }
