// SPDX-License-Identifier: BSD-3-Clause

package driver

// StepDescriptor is the declarative metadata a driver attaches to one of
// its step methods: which interface and step name executes it, its
// priority within the workflow, whether it can be aborted mid-execution,
// the argument schema it accepts, and whether it performs a reboot as part
// of its contract (consulted by the oob-reboot special case).
type StepDescriptor struct {
	Interface        string
	Step             string
	Priority         int
	Abortable        bool
	ArgsInfo         map[string]any
	DeploymentReboot bool
}

// StepProvider is implemented by any capability interface that advertises
// steps for one or more workflows. A hardware type's interface
// implementations return their own steps; the core never hand-maintains a
// central step table.
type StepProvider interface {
	DeploySteps() []StepDescriptor
	CleanSteps() []StepDescriptor
	ServiceSteps() []StepDescriptor
}
