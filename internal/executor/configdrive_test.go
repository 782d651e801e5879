// SPDX-License-Identifier: BSD-3-Clause

package executor

import (
	"context"
	"encoding/base64"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalforge/conductor/internal/task"
	"github.com/metalforge/conductor/pkg/configdrive"
	"github.com/metalforge/conductor/pkg/model"
	"github.com/metalforge/conductor/pkg/provision"
)

type fakeBuilder struct {
	rendered []byte
	err      error
}

func (b *fakeBuilder) Build(configdrive.Data) ([]byte, error) { return b.rendered, b.err }

type fakeObjectStore struct {
	uploaded map[string][]byte
	url      string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{uploaded: make(map[string][]byte)}
}

func (s *fakeObjectStore) CreateObject(_ context.Context, _, name string, body []byte, _ time.Duration) error {
	s.uploaded[name] = body
	return nil
}

func (s *fakeObjectStore) GetTempURL(_ context.Context, _, name string, _ time.Duration) (string, error) {
	if s.url != "" {
		return s.url, nil
	}
	return "https://objects.example/" + name, nil
}

func TestStoreConfigdriveInlineBase64(t *testing.T) {
	node := newConfigdriveNode()
	node.InstanceInfo = map[string]any{"configdrive": "raw-cloud-init-data"}
	tk, store := newTestTask(t, node, &fakeDeploy{execute: func(_ model.Step) (any, error) { return nil, nil }})
	defer tk.Release()
	require.NoError(t, tk.ProcessEvent(context.Background(), provision.EventDeploy, task.ProcessEventOptions{}))

	e := New(nil, nil, slog.Default())
	require.NoError(t, e.Execute(context.Background(), tk, WorkflowDeploy, nil))

	got := store.nodes[node.UUID.String()].InstanceInfo["configdrive"].(string)
	decoded, err := base64.StdEncoding.DecodeString(got)
	require.NoError(t, err)
	assert.Equal(t, "raw-cloud-init-data", string(decoded))
}

func TestStoreConfigdriveOversizedUploadsToObjectStore(t *testing.T) {
	node := newConfigdriveNode()
	big := make([]byte, DefaultConfigDriveSizeThreshold+1)
	node.InstanceInfo = map[string]any{"configdrive": string(big)}
	tk, store := newTestTask(t, node, &fakeDeploy{execute: func(_ model.Step) (any, error) { return nil, nil }})
	defer tk.Release()
	require.NoError(t, tk.ProcessEvent(context.Background(), provision.EventDeploy, task.ProcessEventOptions{}))

	objStore := newFakeObjectStore()
	e := New(nil, objStore, slog.Default())
	require.NoError(t, e.Execute(context.Background(), tk, WorkflowDeploy, nil))

	got := store.nodes[node.UUID.String()].InstanceInfo["configdrive"].(string)
	assert.Equal(t, "https://objects.example/"+node.UUID.String(), got)
	assert.Len(t, objStore.uploaded[node.UUID.String()], len(big))
}

func TestStoreConfigdriveOversizedWithoutObjectStoreFails(t *testing.T) {
	node := newConfigdriveNode()
	big := make([]byte, DefaultConfigDriveSizeThreshold+1)
	node.InstanceInfo = map[string]any{"configdrive": string(big)}
	tk, _ := newTestTask(t, node, &fakeDeploy{execute: func(_ model.Step) (any, error) { return nil, nil }})
	defer tk.Release()
	require.NoError(t, tk.ProcessEvent(context.Background(), provision.EventDeploy, task.ProcessEventOptions{}))

	e := New(nil, nil, slog.Default())
	err := e.Execute(context.Background(), tk, WorkflowDeploy, nil)
	require.NoError(t, err)
	assert.Equal(t, provision.DeployFail, tk.Machine().CurrentState())
}

func TestStoreConfigdriveStructuredMapUsesBuilder(t *testing.T) {
	node := newConfigdriveNode()
	node.InstanceInfo = map[string]any{"configdrive": map[string]any{
		"meta_data": map[string]any{"uuid": node.UUID.String()},
		"user_data": "#cloud-config\n",
	}}
	tk, store := newTestTask(t, node, &fakeDeploy{execute: func(_ model.Step) (any, error) { return nil, nil }})
	defer tk.Release()
	require.NoError(t, tk.ProcessEvent(context.Background(), provision.EventDeploy, task.ProcessEventOptions{}))

	builder := &fakeBuilder{rendered: []byte("iso-bytes")}
	e := New(builder, nil, slog.Default())
	require.NoError(t, e.Execute(context.Background(), tk, WorkflowDeploy, nil))

	got := store.nodes[node.UUID.String()].InstanceInfo["configdrive"].(string)
	decoded, err := base64.StdEncoding.DecodeString(got)
	require.NoError(t, err)
	assert.Equal(t, "iso-bytes", string(decoded))
}

func TestStoreConfigdriveStructuredMapWithoutBuilderFails(t *testing.T) {
	node := newConfigdriveNode()
	node.InstanceInfo = map[string]any{"configdrive": map[string]any{"meta_data": map[string]any{}}}
	tk, _ := newTestTask(t, node, &fakeDeploy{execute: func(_ model.Step) (any, error) { return nil, nil }})
	defer tk.Release()
	require.NoError(t, tk.ProcessEvent(context.Background(), provision.EventDeploy, task.ProcessEventOptions{}))

	e := New(nil, nil, slog.Default())
	err := e.Execute(context.Background(), tk, WorkflowDeploy, nil)
	require.NoError(t, err)
	assert.Equal(t, provision.DeployFail, tk.Machine().CurrentState())
}

func newConfigdriveNode() *model.Node {
	return &model.Node{UUID: uuid.New(), Driver: "fake-ipmi", ProvisionState: provision.Available}
}
