// SPDX-License-Identifier: BSD-3-Clause

// Package mock provides a fully in-process hardware-type Bundle with no
// real BMC/network/storage backend: every call simulates a plausible
// result immediately. It exists for local development and the reference
// entrypoint the same way the bundled mainboard targets simulate sensors
// and power rails for testing rather than talking to real hardware.
package mock

import (
	"sync"

	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/model"
)

// HardwareType is the name the bundle registers itself under.
const HardwareType = "mock"

// NewBundle builds a complete mock driver.Bundle: every optional interface
// slot is populated so a registry built from it can exercise the whole RPC
// surface without a real BMC.
func NewBundle() *driver.Bundle {
	state := &sharedState{
		powerState:   model.PowerOff,
		bootDevice:   "pxe",
		consoleInfo:  map[string]any{"type": "mock", "url": ""},
		raidProps:    map[string]any{},
		supportedRAID: map[string]any{"logical_disks": []any{}},
	}
	return &driver.Bundle{
		Power:      &power{state: state},
		Management: &management{state: state},
		Boot:       &boot{},
		Deploy:     &deploy{},
		Console:    &console{state: state},
		Vendor:     &vendor{},
		RAID:       &raid{state: state},
		BIOS:       &bios{},
		Inspect:    &inspect{},
		Network:    &network{},
		Storage:    &storage{},
	}
}

// sharedState holds the simulated machine's mutable fields behind one
// mutex; the power, management, console and RAID slots each read and write
// their own fields of it.
type sharedState struct {
	mu            sync.Mutex
	powerState    string
	bootDevice    string
	bootPersist   bool
	consoleOn     bool
	consoleInfo   map[string]any
	raidProps     map[string]any
	supportedRAID map[string]any
}

type baseInterface struct{ properties map[string]string }

func (b baseInterface) GetProperties() map[string]string { return b.properties }
func (b baseInterface) Validate(driver.TaskContext) error { return nil }
