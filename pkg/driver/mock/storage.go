// SPDX-License-Identifier: BSD-3-Clause

package mock

import "github.com/metalforge/conductor/pkg/driver"

type storage struct{ baseInterface }

var _ driver.StorageInterface = (*storage)(nil)

func (storage) AttachVolumes(driver.TaskContext) error { return nil }
func (storage) DetachVolumes(driver.TaskContext) error { return nil }

// ShouldWriteImage always reports true: the mock has no remote-boot volume
// concept, so local image write is always the answer.
func (storage) ShouldWriteImage(driver.TaskContext) (bool, error) { return true, nil }
