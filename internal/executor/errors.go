// SPDX-License-Identifier: BSD-3-Clause

package executor

import "errors"

var (
	// ErrUnknownWorkflow indicates Execute was called with a workflow name
	// that has no registered step-sequence metadata.
	ErrUnknownWorkflow = errors.New("executor: unknown workflow")
	// ErrDriverContractViolation indicates a step method returned something
	// other than nil (success) or the driver.Wait sentinel.
	ErrDriverContractViolation = errors.New("executor: driver returned an unexpected value")
	// ErrNotWaiting indicates a resume was requested for a node whose
	// provision_state is not the workflow's WAIT state.
	ErrNotWaiting = errors.New("executor: node is not in a wait state for this workflow")
	// ErrStepNotAbortable indicates Abort was called on a step that does
	// not advertise abortable=true; the abort is instead recorded as sticky
	// and applied once the current step finishes.
	ErrStepNotAbortable = errors.New("executor: current step is not abortable")
	// ErrAgentLostConnection is the sentinel a driver's execute_*_step
	// wraps its error with when the provisioning agent drops connection
	// mid-step; the executor recognises it for the oob-reboot special case
	// when the step also declares deployment_reboot=true.
	ErrAgentLostConnection = errors.New("executor: agent lost connection")
	// ErrConfigDriveTooLarge indicates a configdrive exceeded the inline
	// size threshold but no object store was configured to offload it to.
	ErrConfigDriveTooLarge = errors.New("executor: configdrive exceeds inline threshold and no object store is configured")
	// ErrConfigDriveBuilderRequired indicates instance_info.configdrive was
	// supplied as a structured map but no ISO builder was configured.
	ErrConfigDriveBuilderRequired = errors.New("executor: configdrive was supplied structured but no builder is configured")
)
