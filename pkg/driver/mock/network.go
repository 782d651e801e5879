// SPDX-License-Identifier: BSD-3-Clause

package mock

import "github.com/metalforge/conductor/pkg/driver"

type network struct{ baseInterface }

var _ driver.NetworkInterface = (*network)(nil)

func (network) AddProvisioningNetwork(driver.TaskContext) error    { return nil }
func (network) RemoveProvisioningNetwork(driver.TaskContext) error { return nil }
func (network) AddCleaningNetwork(driver.TaskContext) error        { return nil }
func (network) RemoveCleaningNetwork(driver.TaskContext) error     { return nil }
