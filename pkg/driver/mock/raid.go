// SPDX-License-Identifier: BSD-3-Clause

package mock

import "github.com/metalforge/conductor/pkg/driver"

type raid struct {
	baseInterface
	state *sharedState
}

var _ driver.RAIDInterface = (*raid)(nil)

func (r *raid) CreateConfiguration(_ driver.TaskContext, target map[string]any) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.raidProps = target
	return nil
}

func (r *raid) GetLogicalDiskProperties() map[string]any {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return r.state.supportedRAID
}
