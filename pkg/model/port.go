// SPDX-License-Identifier: BSD-3-Clause

package model

import "github.com/google/uuid"

// Port is a network interface belonging to exactly one Node.
type Port struct {
	UUID         uuid.UUID `json:"uuid"`
	ID           int64     `json:"id"`
	NodeUUID     uuid.UUID `json:"node_uuid"`
	PortgroupUUID uuid.UUID `json:"portgroup_uuid,omitempty"`

	Address          string         `json:"address"` // MAC address, unique across the store
	PXEEnabled       bool           `json:"pxe_enabled"`
	LocalLinkConn    map[string]any `json:"local_link_connection,omitempty"`
	PhysicalNetwork  string         `json:"physical_network,omitempty"`
	InternalInfo     map[string]any `json:"internal_info,omitempty"`

	Version int64 `json:"version"`
}

// InPortgroup reports whether the port belongs to a portgroup.
func (p *Port) InPortgroup() bool { return p.PortgroupUUID != uuid.Nil }

// Portgroup aggregates a set of Ports belonging to one Node, e.g. for bonding.
type Portgroup struct {
	UUID     uuid.UUID `json:"uuid"`
	ID       int64     `json:"id"`
	NodeUUID uuid.UUID `json:"node_uuid"`

	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Mode    string `json:"mode,omitempty"`

	Version int64 `json:"version"`
}
