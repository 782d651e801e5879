// SPDX-License-Identifier: BSD-3-Clause

package mock

import "github.com/metalforge/conductor/pkg/driver"

type management struct {
	baseInterface
	state *sharedState
}

var _ driver.ManagementInterface = (*management)(nil)

var mockSupportedBootDevices = []string{"pxe", "disk", "cdrom"}

func (m *management) GetSupportedBootDevices(driver.TaskContext) ([]string, error) {
	return mockSupportedBootDevices, nil
}

func (m *management) SetBootDevice(_ driver.TaskContext, device string, persistent bool) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	m.state.bootDevice = device
	m.state.bootPersist = persistent
	return nil
}

func (m *management) GetBootDevice(driver.TaskContext) (string, bool, error) {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	return m.state.bootDevice, m.state.bootPersist, nil
}

func (m *management) GetSensorsData(driver.TaskContext) (map[string]any, error) {
	return map[string]any{
		"Temperature": map[string]any{"cpu0": map[string]any{"Sensor Reading": "42"}},
		"Fan":         map[string]any{"fan1": map[string]any{"Sensor Reading": "3200"}},
	}, nil
}
