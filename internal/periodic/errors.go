// SPDX-License-Identifier: BSD-3-Clause

package periodic

import "errors"

var (
	// ErrNoSensorPublisher is returned by the sensor shipper loop when it
	// is enabled but constructed without a Publisher.
	ErrNoSensorPublisher = errors.New("periodic: sensor shipper enabled without a publisher")
)
