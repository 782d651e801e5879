// SPDX-License-Identifier: BSD-3-Clause

package mock

import "github.com/metalforge/conductor/pkg/driver"

type vendor struct{ baseInterface }

var _ driver.VendorInterface = (*vendor)(nil)

func (vendor) Routes() map[string]driver.VendorRoute {
	return map[string]driver.VendorRoute{
		"ping": {
			HTTPMethods: []string{"POST"},
			Description: "Echoes args back, to confirm a node's vendor passthru route is reachable.",
			Func: func(_ driver.TaskContext, args map[string]any) (any, error) {
				return map[string]any{"pong": args}, nil
			},
		},
	}
}
