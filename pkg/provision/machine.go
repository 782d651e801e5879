// SPDX-License-Identifier: BSD-3-Clause

package provision

import (
	"context"
	"log/slog"

	"github.com/metalforge/conductor/pkg/fsm"
)

// transition is one (start, event, end) edge of the provisioning machine.
type transition struct {
	start, end, event string
}

// stateDef describes one state's target, ahead of AddState being called.
type stateDef struct {
	name   string
	target string
}

// nonStableStates lists every state that is not in stableStates, along with
// the stable state it is ultimately heading towards.
var nonStableStates = []stateDef{
	{Verifying, Manageable},
	{Deploying, Active},
	{DeployWait, Active},
	{DeployFail, Active},
	{DeployHold, Active},
	{Cleaning, Available},
	{CleanWait, Available},
	{CleanFail, Available},
	{CleanHold, Available},
	{Deleting, Available},
	{Inspecting, Manageable},
	{InspectFail, Manageable},
	{InspectWait, Manageable},
	{Adopting, Active},
	{AdoptFail, Active},
	{Rescuing, Rescue},
	{RescueWait, Rescue},
	{RescueFail, Rescue},
	{Unrescuing, Active},
	{UnrescueFail, Active},
	{Servicing, Active},
	{ServiceWait, Active},
	{ServiceFail, Active},
	{ServiceHold, Active},
}

var transitions = []transition{
	{Available, Deploying, EventDeploy},
	{Deploying, DeployFail, EventFail},
	{DeployFail, Deploying, EventRebuild},
	{DeployFail, Deploying, EventDeploy},
	{Deploying, DeployWait, EventWait},
	{Deploying, DeployHold, EventHold},
	{DeployWait, DeployHold, EventHold},
	{DeployWait, Deploying, EventResume},
	{DeployWait, DeployFail, EventFail},
	{DeployHold, DeployWait, EventUnhold},
	{DeployHold, DeployFail, EventAbort},
	{Deploying, Active, EventDone},
	{Active, Deploying, EventRebuild},
	{Active, Deleting, EventDelete},
	{DeployWait, Deleting, EventDelete},
	{DeployFail, Deleting, EventDelete},
	{Deleting, Error, EventFail},
	{Deleting, Cleaning, EventClean},
	{Cleaning, Available, EventDone},
	{Cleaning, CleanFail, EventFail},
	{Cleaning, CleanFail, EventAbort},
	{CleanWait, CleanFail, EventFail},
	{CleanWait, CleanFail, EventAbort},
	{Cleaning, CleanWait, EventWait},
	{Cleaning, CleanHold, EventHold},
	{CleanWait, CleanHold, EventHold},
	{CleanWait, Cleaning, EventResume},
	{CleanHold, CleanFail, EventAbort},
	{CleanHold, CleanWait, EventUnhold},
	{CleanFail, Manageable, EventManage},
	{Manageable, Cleaning, EventProvide},
	{Manageable, Cleaning, EventClean},
	{Cleaning, Manageable, EventManage},
	{Available, Manageable, EventManage},
	{Error, Deploying, EventRebuild},
	{Error, Deleting, EventDelete},
	{Manageable, Inspecting, EventInspect},
	{Inspecting, Manageable, EventDone},
	{Inspecting, InspectFail, EventFail},
	{Inspecting, InspectWait, EventWait},
	{InspectWait, Manageable, EventDone},
	{InspectWait, InspectFail, EventFail},
	{InspectWait, InspectFail, EventAbort},
	{InspectWait, Inspecting, EventResume},
	{InspectFail, Manageable, EventManage},
	{InspectFail, Inspecting, EventInspect},
	{Active, Rescuing, EventRescue},
	{Rescuing, Rescue, EventDone},
	{Rescuing, RescueWait, EventWait},
	{RescueWait, Rescuing, EventResume},
	{Rescue, Rescuing, EventRescue},
	{Rescue, Deleting, EventDelete},
	{RescueWait, RescueFail, EventFail},
	{Rescuing, RescueFail, EventFail},
	{RescueWait, RescueFail, EventAbort},
	{RescueFail, Rescuing, EventRescue},
	{RescueFail, Unrescuing, EventUnrescue},
	{RescueFail, Deleting, EventDelete},
	{RescueWait, Deleting, EventDelete},
	{Rescue, Unrescuing, EventUnrescue},
	{Unrescuing, Active, EventDone},
	{Unrescuing, UnrescueFail, EventFail},
	{UnrescueFail, Rescuing, EventRescue},
	{UnrescueFail, Unrescuing, EventUnrescue},
	{UnrescueFail, Deleting, EventDelete},
	{Enroll, Verifying, EventManage},
	{Verifying, Manageable, EventDone},
	{Verifying, Enroll, EventFail},
	{Manageable, Adopting, EventAdopt},
	{Adopting, Active, EventDone},
	{Adopting, AdoptFail, EventFail},
	{AdoptFail, Adopting, EventAdopt},
	{AdoptFail, Manageable, EventManage},
	{Servicing, Active, EventDone},
	{Active, Servicing, EventService},
	{Servicing, ServiceFail, EventFail},
	{Servicing, ServiceWait, EventWait},
	{Servicing, ServiceHold, EventHold},
	{ServiceWait, ServiceHold, EventHold},
	{ServiceHold, Servicing, EventService},
	{ServiceHold, ServiceWait, EventUnhold},
	{ServiceWait, Servicing, EventResume},
	{ServiceWait, ServiceFail, EventFail},
	{ServiceHold, ServiceFail, EventFail},
	{ServiceWait, ServiceFail, EventAbort},
	{ServiceHold, ServiceFail, EventAbort},
	{ServiceFail, Servicing, EventService},
	{ServiceFail, Rescuing, EventRescue},
	{ServiceFail, ServiceWait, EventWait},
	{ServiceFail, ServiceHold, EventHold},
	{ServiceFail, Deleting, EventDelete},
	{ServiceFail, Active, EventAbort},
	{ServiceWait, Deleting, EventDelete},
}

// NewMachine builds the provisioning state machine. The returned machine is
// shared, uninitialized template: callers get a per-node instance by calling
// Copy(true) and then Initialize with the node's persisted provision state.
func NewMachine(logger *slog.Logger) (*fsm.FSM, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "provision")

	onEnter := fsm.WithOnEnter(func(_ context.Context, state, event string) error {
		logger.Debug("entering provision state", "state", state, "event", event)
		return nil
	})
	onExit := fsm.WithOnExit(func(_ context.Context, state, event string) error {
		logger.Debug("exiting provision state", "state", state, "event", event)
		return nil
	})

	m := fsm.New(fsm.WithName("provision"))

	for _, name := range stableStates {
		if err := m.AddState(name, fsm.WithStable(), onEnter, onExit); err != nil {
			return nil, err
		}
	}
	for _, d := range nonStableStates {
		if err := m.AddState(d.name, fsm.WithTargetState(d.target), onEnter, onExit); err != nil {
			return nil, err
		}
	}
	for _, t := range transitions {
		if err := m.AddTransition(t.start, t.end, t.event); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// NewNodeMachine returns a per-node copy of the shared machine template,
// initialized to the given state.
func NewNodeMachine(template *fsm.FSM, state string) (*fsm.FSM, error) {
	node := template.Copy(true)
	if err := node.Initialize(state); err != nil {
		return nil, err
	}
	return node, nil
}
