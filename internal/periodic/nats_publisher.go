// SPDX-License-Identifier: BSD-3-Clause

package periodic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSPublisher ships sensor readings as JSON to a NATS subject derived
// from subjectPrefix and the node UUID, over whichever NATS connection it
// is given.
type NATSPublisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewNATSPublisher builds a Publisher over an established NATS connection.
// subjectPrefix defaults to "conductor.sensors" when empty.
func NewNATSPublisher(conn *nats.Conn, subjectPrefix string) *NATSPublisher {
	if subjectPrefix == "" {
		subjectPrefix = "conductor.sensors"
	}
	return &NATSPublisher{conn: conn, subjectPrefix: subjectPrefix}
}

// PublishSensorData implements Publisher.
func (p *NATSPublisher) PublishSensorData(_ context.Context, nodeUUID string, reading map[string]any) error {
	body, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("marshal sensor reading: %w", err)
	}
	return p.conn.Publish(p.subjectPrefix+"."+nodeUUID, body)
}
