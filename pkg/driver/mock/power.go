// SPDX-License-Identifier: BSD-3-Clause

package mock

import (
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/model"
)

type power struct {
	baseInterface
	state *sharedState
}

var _ driver.PowerInterface = (*power)(nil)

func (p *power) GetPowerState(driver.TaskContext) (string, error) {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	return p.state.powerState, nil
}

func (p *power) SetPowerState(_ driver.TaskContext, target string) error {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	p.state.powerState = target
	return nil
}

func (p *power) Reboot(driver.TaskContext) error {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	p.state.powerState = model.PowerOn
	return nil
}
