// SPDX-License-Identifier: BSD-3-Clause

// Package netprovider declares the narrow network/DHCP collaborator the
// Network interface consumes to wire and unwire a node's ports for
// provisioning and cleaning. It does not implement a concrete DHCP/IPAM
// backend; deployments wire in whichever network controller they use
// (Neutron-alike, a bare DHCP server, ...).
package netprovider

import (
	"context"

	"github.com/google/uuid"
)

// Provider is the network-side collaborator consumed by pkg/driver's
// NetworkInterface implementations.
type Provider interface {
	// UpdatePortAddress changes the MAC address bound to portUUID.
	UpdatePortAddress(ctx context.Context, portUUID uuid.UUID, address string) error
	// UpdatePortDHCPOpts replaces the DHCP options attached to portUUID.
	UpdatePortDHCPOpts(ctx context.Context, portUUID uuid.UUID, opts map[string]string) error
	// CreateCleaningPorts provisions temporary ports on the cleaning
	// network for nodeUUID, returning their identifiers.
	CreateCleaningPorts(ctx context.Context, nodeUUID uuid.UUID) ([]uuid.UUID, error)
	// DeleteCleaningPorts tears down the ports CreateCleaningPorts made.
	DeleteCleaningPorts(ctx context.Context, nodeUUID uuid.UUID) error
}
