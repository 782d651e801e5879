// SPDX-License-Identifier: BSD-3-Clause

package conductor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/micro"

	"github.com/metalforge/conductor/internal/executor"
	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/coreerrors"
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/hashring"
	"github.com/metalforge/conductor/pkg/model"
	"github.com/metalforge/conductor/pkg/provision"
)

// operations names every RPC endpoint this conductor exposes against the
// handler that implements it. The map is rebuilt (cheaply) on every
// registerRPC call rather than cached, since it closes over c.
func (c *Conductor) operations() map[string]opHandler {
	return map[string]opHandler{
		"ChangeNodePowerState":        c.handleChangeNodePowerState,
		"UpdateNode":                  c.handleUpdateNode,
		"DoNodeDeploy":                c.handleDoNodeDeploy,
		"DoNodeTearDown":              c.handleDoNodeTearDown,
		"DoNodeClean":                 c.handleDoNodeClean,
		"ContinueNodeClean":           c.handleContinueNodeClean,
		"ContinueNodeDeploy":          c.handleContinueNodeDeploy,
		"DoProvisioningAction":        c.handleDoProvisioningAction,
		"InspectHardware":             c.handleInspectHardware,
		"Heartbeat":                   c.handleHeartbeat,
		"VendorPassthru":              c.handleVendorPassthru,
		"DriverVendorPassthru":        c.handleDriverVendorPassthru,
		"SetBootDevice":               c.handleSetBootDevice,
		"GetBootDevice":               c.handleGetBootDevice,
		"GetSupportedBootDevices":     c.handleGetSupportedBootDevices,
		"ValidateDriverInterfaces":    c.handleValidateDriverInterfaces,
		"GetConsoleInformation":       c.handleGetConsoleInformation,
		"SetConsoleMode":              c.handleSetConsoleMode,
		"GetNodeVendorPassthruMethods": c.handleGetNodeVendorPassthruMethods,
		"UpdatePort":                  c.handleUpdatePort,
		"UpdatePortgroup":             c.handleUpdatePortgroup,
		"DestroyNode":                 c.handleDestroyNode,
		"DestroyPort":                 c.handleDestroyPort,
		"DestroyPortgroup":            c.handleDestroyPortgroup,
		"SetTargetRaidConfig":         c.handleSetTargetRaidConfig,
		"GetRaidLogicalDiskProperties": c.handleGetRaidLogicalDiskProperties,
	}
}

// forward relays body, the original request payload, to the conductor that
// owns nodeUUID/driverName under its host-scoped subject, returning the raw
// reply bytes for respond to pass through unmodified.
func (c *Conductor) forward(ctx context.Context, nodeUUID uuid.UUID, driverName, op string, body []byte) (any, error) {
	owner, err := c.ring.Lookup(hashring.NodeKey(nodeUUID, driverName))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrForwardingUnavailable, err)
	}
	subject := c.cfg.RPCSubjectPrefix + "." + owner + "." + op
	msg, err := c.nc.RequestWithContext(ctx, subject, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrForwardingUnavailable, err)
	}
	return rawResponse(msg.Data), nil
}

// dispatchNodeOp resolves nodeIdentity, forwards to the owning conductor if
// this host doesn't hold it on the current hash ring, and otherwise
// acquires an exclusive Task and runs fn against it.
func (c *Conductor) dispatchNodeOp(ctx context.Context, req micro.Request, nodeIdentity, op string, fn func(tk *task.Task) (any, error)) (any, error) {
	node, err := c.nodes.GetNodeByIdentity(ctx, nodeIdentity)
	if err != nil {
		return nil, err
	}
	local, err := c.NodeIsLocal(node.UUID, node.Driver)
	if err != nil {
		return nil, err
	}
	if !local {
		return c.forward(ctx, node.UUID, node.Driver, op, req.Data())
	}

	tk, err := c.mgr.Acquire(ctx, nodeIdentity, task.AcquireOptions{Purpose: op})
	if err != nil {
		return nil, err
	}
	defer tk.Release()
	return fn(tk)
}

// dispatchSharedNodeOp is dispatchNodeOp's read-only counterpart: it
// acquires a shared lock, so it never excludes a concurrent mutating
// operation and never writes a reservation.
func (c *Conductor) dispatchSharedNodeOp(ctx context.Context, req micro.Request, nodeIdentity, op string, fn func(tk *task.Task) (any, error)) (any, error) {
	node, err := c.nodes.GetNodeByIdentity(ctx, nodeIdentity)
	if err != nil {
		return nil, err
	}
	local, err := c.NodeIsLocal(node.UUID, node.Driver)
	if err != nil {
		return nil, err
	}
	if !local {
		return c.forward(ctx, node.UUID, node.Driver, op, req.Data())
	}

	tk, err := c.mgr.Acquire(ctx, nodeIdentity, task.AcquireOptions{Shared: true, Purpose: op})
	if err != nil {
		return nil, err
	}
	defer tk.Release()
	return fn(tk)
}

func (c *Conductor) handleChangeNodePowerState(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[changeNodePowerStateRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "ChangeNodePowerState", func(tk *task.Task) (any, error) {
		return nil, c.changeNodePowerState(ctx, tk, in.TargetState)
	})
}

// changeNodePowerState records the desired power state and spawns the
// driver call under the task's reservation; PowerSyncLoop reconciles the
// reported state against it afterwards, so this does not block on hardware.
func (c *Conductor) changeNodePowerState(ctx context.Context, tk *task.Task, target string) error {
	power, err := tk.Bundle().RequirePower()
	if err != nil {
		return err
	}
	if err := tk.UpdateNode(ctx, model.NodeDiff{"target_power_state": target}); err != nil {
		return err
	}
	return tk.SpawnAfter(func(ctx context.Context) error {
		var callErr error
		if target == provisionPowerReboot {
			callErr = power.Reboot(tk)
		} else {
			callErr = power.SetPowerState(tk, target)
		}
		if callErr != nil {
			c.logger.ErrorContext(ctx, "power state change failed", "node", tk.Node().UUID, "target", target, "error", callErr)
			return callErr
		}
		return tk.UpdateNode(ctx, model.NodeDiff{"power_state": target, "target_power_state": ""})
	})
}

const provisionPowerReboot = "rebooting"

func (c *Conductor) handleUpdateNode(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[updateNodeRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "UpdateNode", func(tk *task.Task) (any, error) {
		if err := tk.UpdateNode(ctx, in.Diff); err != nil {
			return nil, err
		}
		return updateNodeResponse{Node: tk.Node()}, nil
	})
}

func (c *Conductor) handleDoNodeDeploy(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[doNodeDeployRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "DoNodeDeploy", func(tk *task.Task) (any, error) {
		if err := model.CheckMaintenanceAllows(tk.Node(), provision.EventDeploy); err != nil {
			return nil, err
		}
		event := provision.EventDeploy
		if in.Rebuild {
			event = provision.EventRebuild
		}
		steps, err := c.registry.DeploySteps(tk.Node().Driver)
		if err != nil {
			return nil, err
		}
		return nil, tk.ProcessEvent(ctx, event, task.ProcessEventOptions{
			Callback: func(ctx context.Context) error {
				return c.exec.Execute(ctx, tk, executor.WorkflowDeploy, descriptorsToSteps(steps))
			},
		})
	})
}

func (c *Conductor) handleDoNodeTearDown(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[nodeIdentityRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "DoNodeTearDown", func(tk *task.Task) (any, error) {
		boot, err := tk.Bundle().RequireBoot()
		if err != nil {
			return nil, err
		}
		return nil, tk.ProcessEvent(ctx, provision.EventDelete, task.ProcessEventOptions{
			Callback: func(ctx context.Context) error {
				if err := boot.CleanUpInstance(tk); err != nil {
					return err
				}
				return tk.ProcessEvent(ctx, provision.EventClean, task.ProcessEventOptions{
					Callback: func(ctx context.Context) error {
						steps, err := c.registry.CleanSteps(tk.Node().Driver)
						if err != nil {
							return err
						}
						return c.exec.Execute(ctx, tk, executor.WorkflowClean, descriptorsToSteps(steps))
					},
				})
			},
		})
	})
}

func (c *Conductor) handleDoNodeClean(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[doNodeCleanRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "DoNodeClean", func(tk *task.Task) (any, error) {
		if err := model.CheckMaintenanceAllows(tk.Node(), provision.EventClean); err != nil {
			return nil, err
		}
		return nil, tk.ProcessEvent(ctx, provision.EventClean, task.ProcessEventOptions{
			Callback: func(ctx context.Context) error {
				return c.exec.Execute(ctx, tk, executor.WorkflowClean, in.Steps)
			},
		})
	})
}

func (c *Conductor) handleContinueNodeClean(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[nodeIdentityRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "ContinueNodeClean", func(tk *task.Task) (any, error) {
		return nil, tk.SpawnAfter(func(ctx context.Context) error {
			return c.exec.Resume(ctx, tk, executor.WorkflowClean)
		})
	})
}

func (c *Conductor) handleContinueNodeDeploy(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[nodeIdentityRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "ContinueNodeDeploy", func(tk *task.Task) (any, error) {
		return nil, tk.SpawnAfter(func(ctx context.Context) error {
			return c.exec.Resume(ctx, tk, executor.WorkflowDeploy)
		})
	})
}

func (c *Conductor) handleDoProvisioningAction(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[doProvisioningActionRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "DoProvisioningAction", func(tk *task.Task) (any, error) {
		switch in.Event {
		case provision.EventInspect:
			if err := model.CheckMaintenanceAllows(tk.Node(), provision.EventInspect); err != nil {
				return nil, err
			}
			inspect, err := tk.Bundle().RequireInspect()
			if err != nil {
				return nil, err
			}
			return nil, tk.ProcessEvent(ctx, provision.EventInspect, task.ProcessEventOptions{
				Callback: func(ctx context.Context) error {
					return c.exec.RunSingleAction(ctx, tk, executor.ActionInspect, func(t driver.TaskContext) (any, error) {
						return nil, inspect.Inspect(t)
					})
				},
			})
		case provision.EventAdopt:
			return nil, tk.ProcessEvent(ctx, provision.EventAdopt, task.ProcessEventOptions{
				Callback: func(ctx context.Context) error {
					return c.exec.RunSingleAction(ctx, tk, executor.ActionAdopt, func(t driver.TaskContext) (any, error) {
						return nil, nil
					})
				},
			})
		default:
			return nil, tk.ProcessEvent(ctx, in.Event, task.ProcessEventOptions{})
		}
	})
}

func (c *Conductor) handleInspectHardware(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[nodeIdentityRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "InspectHardware", func(tk *task.Task) (any, error) {
		if err := model.CheckMaintenanceAllows(tk.Node(), provision.EventInspect); err != nil {
			return nil, err
		}
		inspect, err := tk.Bundle().RequireInspect()
		if err != nil {
			return nil, err
		}
		return nil, tk.ProcessEvent(ctx, provision.EventInspect, task.ProcessEventOptions{
			Callback: func(ctx context.Context) error {
				return c.exec.RunSingleAction(ctx, tk, executor.ActionInspect, func(t driver.TaskContext) (any, error) {
					return nil, inspect.Inspect(t)
				})
			},
		})
	})
}

// handleHeartbeat is the high-frequency agent callback path: it runs on
// the reserved pool's Manager rather than the primary one, so a saturated
// primary pool (busy running deploy/clean continuations) can never starve
// an agent's heartbeat and strand it waiting for ContinueNodeDeploy.
func (c *Conductor) handleHeartbeat(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[heartbeatRequest](req)
	if err != nil {
		return nil, err
	}
	node, err := c.nodes.GetNodeByIdentity(ctx, in.NodeIdentity)
	if err != nil {
		return nil, err
	}
	local, err := c.NodeIsLocal(node.UUID, node.Driver)
	if err != nil {
		return nil, err
	}
	if !local {
		return c.forward(ctx, node.UUID, node.Driver, "Heartbeat", req.Data())
	}

	tk, err := c.reservedMgr.Acquire(ctx, in.NodeIdentity, task.AcquireOptions{Shared: true, Purpose: "heartbeat"})
	if err != nil {
		return nil, err
	}
	defer tk.Release()

	diff := model.NodeDiff{}
	if in.CallbackURL != "" {
		diff["driver_internal_info"] = mergeInternalInfo(tk.Node(), map[string]any{"agent_url": in.CallbackURL})
	}
	if len(diff) > 0 {
		if err := tk.UpdateNode(ctx, diff); err != nil {
			return nil, err
		}
	}

	switch tk.Node().ProvisionState {
	case provision.DeployWait:
		return nil, tk.SpawnAfter(func(ctx context.Context) error { return c.exec.Resume(ctx, tk, executor.WorkflowDeploy) })
	case provision.CleanWait:
		return nil, tk.SpawnAfter(func(ctx context.Context) error { return c.exec.Resume(ctx, tk, executor.WorkflowClean) })
	default:
		return nil, nil
	}
}

func mergeInternalInfo(node *model.Node, kv map[string]any) map[string]any {
	merged := make(map[string]any, len(node.DriverInternalInfo)+len(kv))
	for k, v := range node.DriverInternalInfo {
		merged[k] = v
	}
	for k, v := range kv {
		merged[k] = v
	}
	return merged
}

func (c *Conductor) handleVendorPassthru(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[vendorPassthruRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchSharedNodeOp(ctx, req, in.NodeIdentity, "VendorPassthru", func(tk *task.Task) (any, error) {
		vendor, err := tk.Bundle().RequireVendor()
		if err != nil {
			return nil, err
		}
		route, ok := vendor.Routes()[in.Method]
		if !ok {
			return nil, fmt.Errorf("%w: vendor method %q", coreerrors.ErrUnsupportedDriverExtension, in.Method)
		}
		if !route.AllowsMethod(in.HTTPMethod) {
			return nil, fmt.Errorf("%w: %s does not allow %s", coreerrors.ErrInvalidParameterValue, in.Method, in.HTTPMethod)
		}
		if route.Async {
			if err := tk.UpgradeLock(ctx); err != nil {
				return nil, err
			}
			if err := tk.SpawnAfter(func(ctx context.Context) error {
				_, err := route.Func(tk, in.Args)
				return err
			}); err != nil {
				return nil, err
			}
			return vendorPassthruResponse{}, nil
		}
		result, err := route.Func(tk, in.Args)
		if err != nil {
			return nil, err
		}
		return vendorPassthruResponse{Result: result}, nil
	})
}

// handleDriverVendorPassthru dispatches a driver-level (not node-scoped)
// vendor method: no reservation is taken since no node is involved.
func (c *Conductor) handleDriverVendorPassthru(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[driverVendorPassthruRequest](req)
	if err != nil {
		return nil, err
	}
	bundle, err := c.registry.LoadDriver(in.DriverName)
	if err != nil {
		return nil, err
	}
	vendor, err := bundle.RequireVendor()
	if err != nil {
		return nil, err
	}
	route, ok := vendor.Routes()[in.Method]
	if !ok {
		return nil, fmt.Errorf("%w: vendor method %q", coreerrors.ErrUnsupportedDriverExtension, in.Method)
	}
	if !route.AllowsMethod(in.HTTPMethod) {
		return nil, fmt.Errorf("%w: %s does not allow %s", coreerrors.ErrInvalidParameterValue, in.Method, in.HTTPMethod)
	}
	result, err := route.Func(&driverContext{ctx: ctx}, in.Args)
	if err != nil {
		return nil, err
	}
	return vendorPassthruResponse{Result: result}, nil
}

// driverContext is the minimal driver.TaskContext used by driver-level (not
// node-scoped) calls, which have no Task to bind to.
type driverContext struct{ ctx context.Context }

func (d *driverContext) Context() context.Context { return d.ctx }
func (d *driverContext) Node() *model.Node         { return nil }

func (c *Conductor) handleSetBootDevice(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[setBootDeviceRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "SetBootDevice", func(tk *task.Task) (any, error) {
		management, err := tk.Bundle().RequireManagement()
		if err != nil {
			return nil, err
		}
		return nil, management.SetBootDevice(tk, in.Device, in.Persistent)
	})
}

func (c *Conductor) handleGetBootDevice(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[nodeIdentityRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchSharedNodeOp(ctx, req, in.NodeIdentity, "GetBootDevice", func(tk *task.Task) (any, error) {
		management, err := tk.Bundle().RequireManagement()
		if err != nil {
			return nil, err
		}
		device, persistent, err := management.GetBootDevice(tk)
		if err != nil {
			return nil, err
		}
		return getBootDeviceResponse{Device: device, Persistent: persistent}, nil
	})
}

func (c *Conductor) handleGetSupportedBootDevices(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[nodeIdentityRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchSharedNodeOp(ctx, req, in.NodeIdentity, "GetSupportedBootDevices", func(tk *task.Task) (any, error) {
		management, err := tk.Bundle().RequireManagement()
		if err != nil {
			return nil, err
		}
		devices, err := management.GetSupportedBootDevices(tk)
		if err != nil {
			return nil, err
		}
		return getSupportedBootDevicesResponse{Devices: devices}, nil
	})
}

func (c *Conductor) handleValidateDriverInterfaces(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[nodeIdentityRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchSharedNodeOp(ctx, req, in.NodeIdentity, "ValidateDriverInterfaces", func(tk *task.Task) (any, error) {
		results := make(map[string]validationResult)
		for _, name := range []string{"power", "management", "boot", "deploy", "console", "vendor", "raid", "bios", "inspect", "network", "storage"} {
			iface := tk.Bundle().InterfaceByName(name)
			if iface == nil {
				continue
			}
			if err := iface.Validate(tk); err != nil {
				results[name] = validationResult{OK: false, Reason: err.Error()}
				continue
			}
			results[name] = validationResult{OK: true}
		}
		return validateDriverInterfacesResponse{Results: results}, nil
	})
}

func (c *Conductor) handleGetConsoleInformation(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[nodeIdentityRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchSharedNodeOp(ctx, req, in.NodeIdentity, "GetConsoleInformation", func(tk *task.Task) (any, error) {
		console, err := tk.Bundle().RequireConsole()
		if err != nil {
			return nil, err
		}
		info, err := console.GetConsole(tk)
		if err != nil {
			return nil, err
		}
		return getConsoleInformationResponse{Console: info}, nil
	})
}

func (c *Conductor) handleSetConsoleMode(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[setConsoleModeRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "SetConsoleMode", func(tk *task.Task) (any, error) {
		console, err := tk.Bundle().RequireConsole()
		if err != nil {
			return nil, err
		}
		if in.Enabled {
			return nil, console.StartConsole(tk)
		}
		return nil, console.StopConsole(tk)
	})
}

func (c *Conductor) handleGetNodeVendorPassthruMethods(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[nodeIdentityRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchSharedNodeOp(ctx, req, in.NodeIdentity, "GetNodeVendorPassthruMethods", func(tk *task.Task) (any, error) {
		vendor, err := tk.Bundle().RequireVendor()
		if err != nil {
			return nil, err
		}
		methods := make(map[string]vendorRouteInfo, len(vendor.Routes()))
		for name, route := range vendor.Routes() {
			methods[name] = vendorRouteInfo{
				HTTPMethods: route.HTTPMethods,
				Async:       route.Async,
				Description: route.Description,
			}
		}
		return getNodeVendorPassthruMethodsResponse{Methods: methods}, nil
	})
}

func (c *Conductor) handleUpdatePort(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[updatePortRequest](req)
	if err != nil {
		return nil, err
	}
	portUUID, err := uuid.Parse(in.PortUUID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", coreerrors.ErrInvalidParameterValue, err)
	}
	port, err := c.ports.GetPort(ctx, portUUID)
	if err != nil {
		return nil, err
	}
	node, err := c.nodes.GetNodeByIdentity(ctx, port.NodeUUID.String())
	if err != nil {
		return nil, err
	}
	if _, ok := in.Diff["address"]; ok {
		if err := model.CheckPortAddressMutable(node); err != nil {
			return nil, err
		}
	}
	if _, ok := in.Diff["pxe_enabled"]; ok {
		if err := model.CheckPXEFlagMutable(node); err != nil {
			return nil, err
		}
	}
	updated, err := c.ports.UpdatePort(ctx, portUUID, port.Version, in.Diff)
	if err != nil {
		return nil, err
	}
	return updatePortResponse{Port: updated}, nil
}

func (c *Conductor) handleUpdatePortgroup(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[updatePortgroupRequest](req)
	if err != nil {
		return nil, err
	}
	portgroupUUID, err := uuid.Parse(in.PortgroupUUID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", coreerrors.ErrInvalidParameterValue, err)
	}
	portgroup, err := c.groups.GetPortgroup(ctx, portgroupUUID)
	if err != nil {
		return nil, err
	}
	updated, err := c.groups.UpdatePortgroup(ctx, portgroupUUID, portgroup.Version, in.Diff)
	if err != nil {
		return nil, err
	}
	return updatePortgroupResponse{Portgroup: updated}, nil
}

func (c *Conductor) handleDestroyNode(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[nodeIdentityRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "DestroyNode", func(tk *task.Task) (any, error) {
		if tk.Node().HasInstance() {
			return nil, coreerrors.ErrNodeAssociated
		}
		return nil, tk.ProcessEvent(ctx, provision.EventDelete, task.ProcessEventOptions{})
	})
}

func (c *Conductor) handleDestroyPort(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[destroyPortRequest](req)
	if err != nil {
		return nil, err
	}
	portUUID, err := uuid.Parse(in.PortUUID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", coreerrors.ErrInvalidParameterValue, err)
	}
	return nil, c.ports.DeletePort(ctx, portUUID)
}

func (c *Conductor) handleDestroyPortgroup(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[destroyPortgroupRequest](req)
	if err != nil {
		return nil, err
	}
	portgroupUUID, err := uuid.Parse(in.PortgroupUUID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", coreerrors.ErrInvalidParameterValue, err)
	}
	return nil, c.groups.DeletePortgroup(ctx, portgroupUUID)
}

func (c *Conductor) handleSetTargetRaidConfig(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[setTargetRaidConfigRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchNodeOp(ctx, req, in.NodeIdentity, "SetTargetRaidConfig", func(tk *task.Task) (any, error) {
		raid, err := tk.Bundle().RequireRAID()
		if err != nil {
			return nil, err
		}
		return nil, raid.CreateConfiguration(tk, in.TargetRaid)
	})
}

func (c *Conductor) handleGetRaidLogicalDiskProperties(ctx context.Context, req micro.Request) (any, error) {
	in, err := decodeRequest[nodeIdentityRequest](req)
	if err != nil {
		return nil, err
	}
	return c.dispatchSharedNodeOp(ctx, req, in.NodeIdentity, "GetRaidLogicalDiskProperties", func(tk *task.Task) (any, error) {
		raid, err := tk.Bundle().RequireRAID()
		if err != nil {
			return nil, err
		}
		return getRaidLogicalDiskPropertiesResponse{Properties: raid.GetLogicalDiskProperties()}, nil
	})
}

func descriptorsToSteps(descriptors []driver.StepDescriptor) []model.Step {
	steps := make([]model.Step, 0, len(descriptors))
	for _, d := range descriptors {
		steps = append(steps, model.Step{
			Interface: d.Interface,
			Step:      d.Step,
			Priority:  d.Priority,
			Abortable: d.Abortable,
		})
	}
	return steps
}
