// SPDX-License-Identifier: BSD-3-Clause

package periodic

import (
	"context"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/model"
)

// Publisher ships a node's sensor reading somewhere outside the conductor
// (a telemetry bus, a metrics pipeline). NATSPublisher publishes to a NATS
// subject; any transport can be substituted.
type Publisher interface {
	PublishSensorData(ctx context.Context, nodeUUID string, reading map[string]any) error
}

// SensorShipperLoop publishes driver.management.get_sensors_data() for
// every local node, filtered down to SendSensorDataTypes when set. It is
// only scheduled if WithSensorShipper was passed to NewRunner's options.
func (r *Runner) SensorShipperLoop() Loop {
	if !r.cfg.SensorShipperEnabled {
		return Loop{}
	}
	return Loop{
		Name:     "sensor-shipper",
		Interval: r.cfg.SensorShipInterval,
		Purpose:  "sensor-shipper",
		Filter:   func() model.NodeFilter { return model.NodeFilter{} },
		Work:     r.shipSensorData,
	}
}

func (r *Runner) shipSensorData(ctx context.Context, tk *task.Task) error {
	if r.publisher == nil {
		return ErrNoSensorPublisher
	}

	mgmt, err := tk.Bundle().RequireManagement()
	if err != nil {
		return nil
	}
	reading, err := mgmt.GetSensorsData(tk)
	if err != nil {
		return err
	}

	filtered := filterSensorTypes(reading, r.cfg.SendSensorDataTypes)
	if len(filtered) == 0 {
		return nil
	}
	return r.publisher.PublishSensorData(ctx, tk.Node().UUID.String(), filtered)
}

func filterSensorTypes(reading map[string]any, types []string) map[string]any {
	if len(types) == 0 {
		return reading
	}
	allow := make(map[string]bool, len(types))
	for _, t := range types {
		allow[t] = true
	}
	filtered := make(map[string]any, len(reading))
	for k, v := range reading {
		if allow[k] {
			filtered[k] = v
		}
	}
	return filtered
}
