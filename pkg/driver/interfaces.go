// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"context"

	"github.com/metalforge/conductor/pkg/model"
)

// TaskContext is the narrow view of a Task Manager task that driver
// interfaces are given: the request context and the node under exclusive
// or shared lock. Interfaces must not reach outside it for node state.
type TaskContext interface {
	Context() context.Context
	Node() *model.Node
}

// WaitSentinel is the distinguished return value an execute_*_step method
// returns to mean "this step is asynchronous, transition to the workflow's
// WAIT state and stop".
type WaitSentinel struct{}

// Wait is the package-level WaitSentinel value; execute_*_step
// implementations return it, callers check for it with errors.Is-style
// identity comparison via IsWait.
var Wait = WaitSentinel{}

// IsWait reports whether v is the Wait sentinel.
func IsWait(v any) bool {
	_, ok := v.(WaitSentinel)
	return ok
}

// Interface is the contract every capability slot satisfies at minimum.
type Interface interface {
	GetProperties() map[string]string
	Validate(t TaskContext) error
}

// PowerInterface controls a node's power state.
type PowerInterface interface {
	Interface
	GetPowerState(t TaskContext) (string, error)
	SetPowerState(t TaskContext, state string) error
	Reboot(t TaskContext) error
}

// ManagementInterface provides boot device and sensor access.
type ManagementInterface interface {
	Interface
	GetSupportedBootDevices(t TaskContext) ([]string, error)
	SetBootDevice(t TaskContext, device string, persistent bool) error
	GetBootDevice(t TaskContext) (device string, persistent bool, err error)
	GetSensorsData(t TaskContext) (map[string]any, error)
}

// BootInterface prepares and cleans up whatever boot mechanism (PXE,
// virtual media, ...) the deploy uses.
type BootInterface interface {
	Interface
	PrepareRamdisk(t TaskContext, params map[string]any) error
	PrepareInstance(t TaskContext) error
	CleanUpInstance(t TaskContext) error
	CleanUpRamdisk(t TaskContext) error
}

// DeployInterface runs the deploy/clean/service/rescue workflows' steps.
//
// TearDownCleaning/TearDownDeploying/TearDownServicing are called
// defensively whenever a step raises an error, to give the driver a chance
// to release any resources the failed step may have left held (clean
// power-off a stuck agent, unmount a ramdisk, release a lease). Their
// failure does not block the transition to the workflow's FAIL state; it
// only marks the node for maintenance, since a resource leak on the way
// out is not something the conductor can verify was resolved.
type DeployInterface interface {
	Interface
	Prepare(t TaskContext) error
	PrepareCleaning(t TaskContext) (any, error)
	TearDownCleaning(t TaskContext) error
	TearDownDeploying(t TaskContext) error
	TearDownServicing(t TaskContext) error
	TakeOver(t TaskContext) error
	ExecuteDeployStep(t TaskContext, step model.Step) (any, error)
	ExecuteCleanStep(t TaskContext, step model.Step) (any, error)
	ExecuteServiceStep(t TaskContext, step model.Step) (any, error)
}

// ConsoleInterface starts/stops a serial/graphical console proxy.
type ConsoleInterface interface {
	Interface
	StartConsole(t TaskContext) error
	StopConsole(t TaskContext) error
	ConsoleIsEnabled(t TaskContext) (bool, error)
	GetConsole(t TaskContext) (map[string]any, error)
}

// VendorInterface dispatches named vendor passthru routes.
type VendorInterface interface {
	Interface
	Routes() map[string]VendorRoute
}

// RAIDInterface configures and reports logical disks.
type RAIDInterface interface {
	Interface
	CreateConfiguration(t TaskContext, target map[string]any) error
	GetLogicalDiskProperties() map[string]any
}

// BIOSInterface reads and applies BIOS settings.
type BIOSInterface interface {
	Interface
	ApplyConfiguration(t TaskContext, settings map[string]any) error
	FactoryReset(t TaskContext) error
}

// InspectInterface discovers hardware characteristics.
type InspectInterface interface {
	Interface
	Inspect(t TaskContext) error
}

// NetworkInterface wires/unwires a node's ports for provisioning and cleaning.
type NetworkInterface interface {
	Interface
	AddProvisioningNetwork(t TaskContext) error
	RemoveProvisioningNetwork(t TaskContext) error
	AddCleaningNetwork(t TaskContext) error
	RemoveCleaningNetwork(t TaskContext) error
}

// StorageInterface attaches/detaches remote (e.g. iSCSI) boot volumes.
type StorageInterface interface {
	Interface
	AttachVolumes(t TaskContext) error
	DetachVolumes(t TaskContext) error
	ShouldWriteImage(t TaskContext) (bool, error)
}

// VendorRoute describes one named vendor passthru route.
type VendorRoute struct {
	HTTPMethods []string
	Async       bool
	Attach      bool
	Description string
	Func        func(t TaskContext, args map[string]any) (any, error)
}

// AllowsMethod reports whether method is in the route's HTTP method whitelist.
func (r VendorRoute) AllowsMethod(method string) bool {
	for _, m := range r.HTTPMethods {
		if m == method {
			return true
		}
	}
	return false
}
