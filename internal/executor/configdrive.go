// SPDX-License-Identifier: BSD-3-Clause

package executor

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/configdrive"
	"github.com/metalforge/conductor/pkg/model"
)

// storeConfigdrive is deploy's preliminary hand-off step: instance_info.configdrive
// may arrive as a pre-built base64 image (string), a structured map to be
// rendered by e.builder, or be absent entirely. Once resolved to bytes, the
// image is either left inline (base64, under the size threshold) or
// uploaded to the object store and replaced by a temporary URL whose TTL
// equals the deploy callback timeout.
func (e *Executor) storeConfigdrive(ctx context.Context, tk *task.Task) error {
	node := tk.Node()
	raw, ok := node.InstanceInfo["configdrive"]
	if !ok || raw == nil {
		return nil
	}

	payload, err := e.renderConfigdrive(raw)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}

	var resolved string
	if len(payload) <= e.cfg.ConfigDriveSizeThreshold {
		resolved = base64.StdEncoding.EncodeToString(payload)
	} else {
		if e.store == nil {
			return ErrConfigDriveTooLarge
		}
		name := node.UUID.String()
		if err := e.store.CreateObject(ctx, e.cfg.ConfigDriveContainer, name, payload, e.cfg.DeployCallbackTimeout); err != nil {
			return fmt.Errorf("upload configdrive: %w", err)
		}
		url, err := e.store.GetTempURL(ctx, e.cfg.ConfigDriveContainer, name, e.cfg.DeployCallbackTimeout)
		if err != nil {
			return fmt.Errorf("mint configdrive temp url: %w", err)
		}
		resolved = url
	}

	instanceInfo := make(map[string]any, len(node.InstanceInfo))
	for k, v := range node.InstanceInfo {
		instanceInfo[k] = v
	}
	instanceInfo["configdrive"] = resolved
	return tk.UpdateNode(ctx, model.NodeDiff{"instance_info": instanceInfo})
}

func (e *Executor) renderConfigdrive(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case map[string]any:
		if e.builder == nil {
			return nil, ErrConfigDriveBuilderRequired
		}
		data := configdrive.Data{
			MetaData:    asMap(v["meta_data"]),
			NetworkData: asMap(v["network_data"]),
			VendorData:  asMap(v["vendor_data"]),
		}
		if s, ok := v["user_data"].(string); ok {
			data.UserData = []byte(s)
		}
		if data.Empty() {
			return nil, nil
		}
		return e.builder.Build(data)
	default:
		return nil, fmt.Errorf("%w: unsupported instance_info.configdrive type %T", ErrConfigDriveBuilderRequired, raw)
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
