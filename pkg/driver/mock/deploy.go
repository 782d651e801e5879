// SPDX-License-Identifier: BSD-3-Clause

package mock

import (
	"github.com/metalforge/conductor/pkg/driver"
	"github.com/metalforge/conductor/pkg/model"
)

type deploy struct{ baseInterface }

var _ driver.DeployInterface = (*deploy)(nil)
var _ driver.StepProvider = (*deploy)(nil)

func (deploy) Prepare(driver.TaskContext) error { return nil }

func (deploy) PrepareCleaning(driver.TaskContext) (any, error) { return nil, nil }

func (deploy) TearDownCleaning(driver.TaskContext) error { return nil }

func (deploy) TearDownDeploying(driver.TaskContext) error { return nil }

func (deploy) TearDownServicing(driver.TaskContext) error { return nil }

func (deploy) TakeOver(driver.TaskContext) error { return nil }

func (deploy) ExecuteDeployStep(driver.TaskContext, model.Step) (any, error) { return nil, nil }

func (deploy) ExecuteCleanStep(driver.TaskContext, model.Step) (any, error) { return nil, nil }

func (deploy) ExecuteServiceStep(driver.TaskContext, model.Step) (any, error) { return nil, nil }

func (deploy) DeploySteps() []driver.StepDescriptor {
	return []driver.StepDescriptor{
		{Interface: "deploy", Step: "write_image", Priority: 80},
	}
}

func (deploy) CleanSteps() []driver.StepDescriptor {
	return []driver.StepDescriptor{
		{Interface: "deploy", Step: "erase_devices_metadata", Priority: 99, Abortable: true},
	}
}

func (deploy) ServiceSteps() []driver.StepDescriptor { return nil }
