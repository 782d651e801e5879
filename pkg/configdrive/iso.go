// SPDX-License-Identifier: BSD-3-Clause

package configdrive

import (
	"encoding/json"
	"fmt"
	"os"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/filesystem/iso9660"
)

// ISOBuilder is the default Builder, writing the OpenStack "config-2"
// layout onto an ISO9660 filesystem with Rock Ridge extensions so long
// file names and POSIX permissions survive.
type ISOBuilder struct {
	// WorkDir is where the scratch image file is created before its bytes
	// are read back and returned; defaults to os.TempDir().
	WorkDir string
}

var _ Builder = (*ISOBuilder)(nil)

const isoVolumeLabel = "config-2"

// isoImageSize is generous for a configdrive payload (metadata + a small
// cloud-init user_data script); go-diskfs pre-allocates this much.
const isoImageSize = 64 * 1024 * 1024

// Build renders data onto a scratch ISO9660 image and returns its bytes.
func (b *ISOBuilder) Build(data Data) ([]byte, error) {
	if data.Empty() {
		return nil, ErrEmptyPayload
	}

	f, err := os.CreateTemp(b.WorkDir, "configdrive-*.iso")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	disk, err := diskfs.Create(path, isoImageSize, diskfs.Raw, diskfs.SectorSizeDefault)
	if err != nil {
		return nil, fmt.Errorf("%w: creating scratch disk: %w", ErrBuildFailed, err)
	}

	fs, err := disk.CreateFilesystem(disk.FilespecArgs{
		Partition:   0,
		FSType:      filesystem.TypeISO9660,
		VolumeLabel: isoVolumeLabel,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating iso9660 filesystem: %w", ErrBuildFailed, err)
	}

	if err := writeJSONFile(fs, "/openstack/latest/meta_data.json", data.MetaData); err != nil {
		return nil, err
	}
	if len(data.NetworkData) > 0 {
		if err := writeJSONFile(fs, "/openstack/latest/network_data.json", data.NetworkData); err != nil {
			return nil, err
		}
	}
	if len(data.VendorData) > 0 {
		if err := writeJSONFile(fs, "/openstack/latest/vendor_data.json", data.VendorData); err != nil {
			return nil, err
		}
	}
	if len(data.UserData) > 0 {
		if err := writeRawFile(fs, "/openstack/latest/user_data", data.UserData); err != nil {
			return nil, err
		}
	}

	iso, ok := fs.(*iso9660.FileSystem)
	if !ok {
		return nil, fmt.Errorf("%w: filesystem is not ISO9660", ErrBuildFailed)
	}
	if err := iso.Finalize(iso9660.FinalizeOptions{RockRidge: true}); err != nil {
		return nil, fmt.Errorf("%w: finalizing image: %w", ErrBuildFailed, err)
	}

	return os.ReadFile(path)
}

func writeJSONFile(fs filesystem.FileSystem, path string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: marshaling %s: %w", ErrBuildFailed, path, err)
	}
	return writeRawFile(fs, path, body)
}

func writeRawFile(fs filesystem.FileSystem, path string, body []byte) error {
	rw, err := fs.OpenFile(path, os.O_CREATE|os.O_RDWR)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrBuildFailed, path, err)
	}
	if _, err := rw.Write(body); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrBuildFailed, path, err)
	}
	return nil
}
