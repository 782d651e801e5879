// SPDX-License-Identifier: BSD-3-Clause

package mock

import "github.com/metalforge/conductor/pkg/driver"

type console struct {
	baseInterface
	state *sharedState
}

var _ driver.ConsoleInterface = (*console)(nil)

func (c *console) StartConsole(driver.TaskContext) error {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	c.state.consoleOn = true
	return nil
}

func (c *console) StopConsole(driver.TaskContext) error {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	c.state.consoleOn = false
	return nil
}

func (c *console) ConsoleIsEnabled(driver.TaskContext) (bool, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return c.state.consoleOn, nil
}

func (c *console) GetConsole(driver.TaskContext) (map[string]any, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	info := make(map[string]any, len(c.state.consoleInfo)+1)
	for k, v := range c.state.consoleInfo {
		info[k] = v
	}
	info["enabled"] = c.state.consoleOn
	return info, nil
}
