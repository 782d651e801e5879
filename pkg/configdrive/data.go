// SPDX-License-Identifier: BSD-3-Clause

package configdrive

// Data is the structured form of a configdrive, mirroring the OpenStack
// "config-2" layout: one JSON document per well-known name under
// /openstack/latest/, plus a free-form cloud-init user_data blob.
type Data struct {
	UserData    []byte
	MetaData    map[string]any
	NetworkData map[string]any
	VendorData  map[string]any
}

// Empty reports whether d has nothing worth rendering.
func (d Data) Empty() bool {
	return len(d.UserData) == 0 && len(d.NetworkData) == 0 && len(d.VendorData) == 0
}

// Builder renders a Data payload into an ISO9660 image. The Step Executor
// invokes it only when the caller passed the structured form rather than a
// pre-built image.
type Builder interface {
	Build(data Data) ([]byte, error)
}
