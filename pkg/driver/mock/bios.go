// SPDX-License-Identifier: BSD-3-Clause

package mock

import "github.com/metalforge/conductor/pkg/driver"

type bios struct{ baseInterface }

var _ driver.BIOSInterface = (*bios)(nil)

func (bios) ApplyConfiguration(driver.TaskContext, map[string]any) error { return nil }

func (bios) FactoryReset(driver.TaskContext) error { return nil }
