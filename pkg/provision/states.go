// SPDX-License-Identifier: BSD-3-Clause

package provision

// Node provisioning states.
const (
	Enroll     = "enroll"
	Verifying  = "verifying"
	Manageable = "manageable"
	Available  = "available"
	Active     = "active"
	Error      = "error"
	Rescue     = "rescue"

	Deploying  = "deploying"
	DeployWait = "deploy wait"
	DeployFail = "deploy failed"
	DeployHold = "deploy hold"

	Cleaning  = "cleaning"
	CleanWait = "clean wait"
	CleanFail = "clean failed"
	CleanHold = "clean hold"

	Deleting = "deleting"

	Inspecting  = "inspecting"
	InspectFail = "inspect failed"
	InspectWait = "inspect wait"

	Adopting  = "adopting"
	AdoptFail = "adopt failed"

	Rescuing     = "rescuing"
	RescueWait   = "rescue wait"
	RescueFail   = "rescue failed"
	Unrescuing   = "unrescuing"
	UnrescueFail = "unrescue failed"

	Servicing   = "servicing"
	ServiceWait = "service wait"
	ServiceFail = "service failed"
	ServiceHold = "service hold"
)

// stableStates are the passive states a node can be left in indefinitely,
// and the only states that may be named as another state's target.
var stableStates = []string{Enroll, Manageable, Available, Active, Error, Rescue}

// Provisioning events (FSM triggers).
const (
	EventDeploy   = "deploy"
	EventFail     = "fail"
	EventRebuild  = "rebuild"
	EventWait     = "wait"
	EventHold     = "hold"
	EventUnhold   = "unhold"
	EventAbort    = "abort"
	EventResume   = "resume"
	EventDone     = "done"
	EventDelete   = "delete"
	EventClean    = "clean"
	EventManage   = "manage"
	EventProvide  = "provide"
	EventInspect  = "inspect"
	EventRescue   = "rescue"
	EventUnrescue = "unrescue"
	EventAdopt    = "adopt"
	EventService  = "service"
)
