// SPDX-License-Identifier: BSD-3-Clause

package hashring

import "github.com/google/uuid"

// NodeKey builds the composite ring key for a node: its UUID and driver
// name. Including the driver keeps a hardware-type rebalance (a driver
// being added/removed from a conductor's supported list) from silently
// redistributing unrelated nodes that happen to hash nearby.
func NodeKey(nodeUUID uuid.UUID, driver string) string {
	return nodeUUID.String() + "/" + driver
}
