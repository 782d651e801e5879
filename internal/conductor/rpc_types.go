// SPDX-License-Identifier: BSD-3-Clause

package conductor

import "github.com/metalforge/conductor/pkg/model"

// Request/response envelopes for every RPC operation. Every request names
// the node (or driver, or port/portgroup) it targets by identity string so
// handlers can resolve it through the same store interfaces the rest of
// the conductor uses.

type changeNodePowerStateRequest struct {
	NodeIdentity string `json:"node_identity"`
	TargetState  string `json:"target_state"`
}

type updateNodeRequest struct {
	NodeIdentity string         `json:"node_identity"`
	Diff         model.NodeDiff `json:"diff"`
}

type updateNodeResponse struct {
	Node *model.Node `json:"node"`
}

type doNodeDeployRequest struct {
	NodeIdentity string `json:"node_identity"`
	Rebuild      bool   `json:"rebuild"`
	ConfigDrive  any    `json:"configdrive,omitempty"`
}

type nodeIdentityRequest struct {
	NodeIdentity string `json:"node_identity"`
}

type doNodeCleanRequest struct {
	NodeIdentity string       `json:"node_identity"`
	Steps        []model.Step `json:"clean_steps"`
}

type doProvisioningActionRequest struct {
	NodeIdentity string `json:"node_identity"`
	Event        string `json:"event"`
}

type heartbeatRequest struct {
	NodeIdentity string `json:"node_identity"`
	CallbackURL  string `json:"callback_url,omitempty"`
	AgentToken   string `json:"agent_token,omitempty"`
}

type vendorPassthruRequest struct {
	NodeIdentity string         `json:"node_identity"`
	Method       string         `json:"method"`
	HTTPMethod   string         `json:"http_method"`
	Args         map[string]any `json:"args,omitempty"`
}

type vendorPassthruResponse struct {
	Result any `json:"result,omitempty"`
}

type driverVendorPassthruRequest struct {
	DriverName string         `json:"driver_name"`
	Method     string         `json:"method"`
	HTTPMethod string         `json:"http_method"`
	Args       map[string]any `json:"args,omitempty"`
}

type setBootDeviceRequest struct {
	NodeIdentity string `json:"node_identity"`
	Device       string `json:"device"`
	Persistent   bool   `json:"persistent"`
}

type getBootDeviceResponse struct {
	Device     string `json:"device"`
	Persistent bool   `json:"persistent"`
}

type getSupportedBootDevicesResponse struct {
	Devices []string `json:"devices"`
}

type setConsoleModeRequest struct {
	NodeIdentity string `json:"node_identity"`
	Enabled      bool   `json:"enabled"`
}

type getConsoleInformationResponse struct {
	Console map[string]any `json:"console"`
}

type getNodeVendorPassthruMethodsResponse struct {
	Methods map[string]vendorRouteInfo `json:"methods"`
}

type vendorRouteInfo struct {
	HTTPMethods []string `json:"http_methods"`
	Async       bool     `json:"async"`
	Description string   `json:"description"`
}

type updatePortRequest struct {
	PortUUID string         `json:"port_uuid"`
	Diff     model.NodeDiff `json:"diff"`
}

type updatePortResponse struct {
	Port *model.Port `json:"port"`
}

type updatePortgroupRequest struct {
	PortgroupUUID string         `json:"portgroup_uuid"`
	Diff          model.NodeDiff `json:"diff"`
}

type updatePortgroupResponse struct {
	Portgroup *model.Portgroup `json:"portgroup"`
}

type destroyPortRequest struct {
	PortUUID string `json:"port_uuid"`
}

type destroyPortgroupRequest struct {
	PortgroupUUID string `json:"portgroup_uuid"`
}

type setTargetRaidConfigRequest struct {
	NodeIdentity string         `json:"node_identity"`
	TargetRaid   map[string]any `json:"target_raid_config"`
}

type getRaidLogicalDiskPropertiesResponse struct {
	Properties map[string]any `json:"properties"`
}

type validateDriverInterfacesResponse struct {
	Results map[string]validationResult `json:"results"`
}

type validationResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}
