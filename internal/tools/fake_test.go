// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/mcp-hetzner/mcp-hetzner/internal/hetzner"
	"github.com/mcp-hetzner/mcp-hetzner/internal/tools"
)

var errNotWired = errors.New("fake method not wired")

// fakeClient implements hetzner.Client through overridable function
// fields. Methods without an override fail loudly, so each test wires
// exactly what it expects to be called.
type fakeClient struct {
	allServers      func(ctx context.Context) ([]*hcloud.Server, error)
	getServerByID   func(ctx context.Context, id int64) (*hcloud.Server, error)
	createServer    func(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, error)
	deleteServer    func(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error)
	powerOnServer   func(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error)
	powerOffServer  func(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error)
	rebootServer    func(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error)
	allImages       func(ctx context.Context) ([]*hcloud.Image, error)
	allServerTypes  func(ctx context.Context) ([]*hcloud.ServerType, error)
	allLocations    func(ctx context.Context) ([]*hcloud.Location, error)
	getServerType   func(ctx context.Context, idOrName string) (*hcloud.ServerType, error)
	getImage        func(ctx context.Context, idOrName string) (*hcloud.Image, error)
	getLocation     func(ctx context.Context, idOrName string) (*hcloud.Location, error)
	allSSHKeys      func(ctx context.Context) ([]*hcloud.SSHKey, error)
	getSSHKeyByID   func(ctx context.Context, id int64) (*hcloud.SSHKey, error)
	createSSHKey    func(ctx context.Context, opts hcloud.SSHKeyCreateOpts) (*hcloud.SSHKey, error)
	updateSSHKey    func(ctx context.Context, key *hcloud.SSHKey, opts hcloud.SSHKeyUpdateOpts) (*hcloud.SSHKey, error)
	deleteSSHKey    func(ctx context.Context, key *hcloud.SSHKey) error
	allFirewalls    func(ctx context.Context) ([]*hcloud.Firewall, error)
	getFirewallByID func(ctx context.Context, id int64) (*hcloud.Firewall, error)
	createFirewall  func(ctx context.Context, opts hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, error)
	updateFirewall  func(ctx context.Context, fw *hcloud.Firewall, opts hcloud.FirewallUpdateOpts) (*hcloud.Firewall, error)
	deleteFirewall  func(ctx context.Context, fw *hcloud.Firewall) error
	setRules        func(ctx context.Context, fw *hcloud.Firewall, opts hcloud.FirewallSetRulesOpts) ([]*hcloud.Action, error)
	applyResources  func(ctx context.Context, fw *hcloud.Firewall, resources []hcloud.FirewallResource) ([]*hcloud.Action, error)
	removeResources func(ctx context.Context, fw *hcloud.Firewall, resources []hcloud.FirewallResource) ([]*hcloud.Action, error)
	allVolumes      func(ctx context.Context) ([]*hcloud.Volume, error)
	getVolumeByID   func(ctx context.Context, id int64) (*hcloud.Volume, error)
	createVolume    func(ctx context.Context, opts hcloud.VolumeCreateOpts) (hcloud.VolumeCreateResult, error)
	deleteVolume    func(ctx context.Context, volume *hcloud.Volume) error
	attachVolume    func(ctx context.Context, volume *hcloud.Volume, opts hcloud.VolumeAttachOpts) (*hcloud.Action, error)
	detachVolume    func(ctx context.Context, volume *hcloud.Volume) (*hcloud.Action, error)
	resizeVolume    func(ctx context.Context, volume *hcloud.Volume, size int) (*hcloud.Action, error)
}

func (f *fakeClient) AllServers(ctx context.Context) ([]*hcloud.Server, error) {
	if f.allServers == nil {
		return nil, errNotWired
	}

	return f.allServers(ctx)
}

func (f *fakeClient) GetServerByID(ctx context.Context, id int64) (*hcloud.Server, error) {
	if f.getServerByID == nil {
		return nil, errNotWired
	}

	return f.getServerByID(ctx, id)
}

func (f *fakeClient) CreateServer(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, error) {
	if f.createServer == nil {
		return hcloud.ServerCreateResult{}, errNotWired
	}

	return f.createServer(ctx, opts)
}

func (f *fakeClient) DeleteServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error) {
	if f.deleteServer == nil {
		return nil, errNotWired
	}

	return f.deleteServer(ctx, server)
}

func (f *fakeClient) PowerOnServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error) {
	if f.powerOnServer == nil {
		return nil, errNotWired
	}

	return f.powerOnServer(ctx, server)
}

func (f *fakeClient) PowerOffServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error) {
	if f.powerOffServer == nil {
		return nil, errNotWired
	}

	return f.powerOffServer(ctx, server)
}

func (f *fakeClient) RebootServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error) {
	if f.rebootServer == nil {
		return nil, errNotWired
	}

	return f.rebootServer(ctx, server)
}

func (f *fakeClient) AllImages(ctx context.Context) ([]*hcloud.Image, error) {
	if f.allImages == nil {
		return nil, errNotWired
	}

	return f.allImages(ctx)
}

func (f *fakeClient) AllServerTypes(ctx context.Context) ([]*hcloud.ServerType, error) {
	if f.allServerTypes == nil {
		return nil, errNotWired
	}

	return f.allServerTypes(ctx)
}

func (f *fakeClient) AllLocations(ctx context.Context) ([]*hcloud.Location, error) {
	if f.allLocations == nil {
		return nil, errNotWired
	}

	return f.allLocations(ctx)
}

func (f *fakeClient) GetServerType(ctx context.Context, idOrName string) (*hcloud.ServerType, error) {
	if f.getServerType == nil {
		return nil, errNotWired
	}

	return f.getServerType(ctx, idOrName)
}

func (f *fakeClient) GetImage(ctx context.Context, idOrName string) (*hcloud.Image, error) {
	if f.getImage == nil {
		return nil, errNotWired
	}

	return f.getImage(ctx, idOrName)
}

func (f *fakeClient) GetLocation(ctx context.Context, idOrName string) (*hcloud.Location, error) {
	if f.getLocation == nil {
		return nil, errNotWired
	}

	return f.getLocation(ctx, idOrName)
}

func (f *fakeClient) AllSSHKeys(ctx context.Context) ([]*hcloud.SSHKey, error) {
	if f.allSSHKeys == nil {
		return nil, errNotWired
	}

	return f.allSSHKeys(ctx)
}

func (f *fakeClient) GetSSHKeyByID(ctx context.Context, id int64) (*hcloud.SSHKey, error) {
	if f.getSSHKeyByID == nil {
		return nil, errNotWired
	}

	return f.getSSHKeyByID(ctx, id)
}

func (f *fakeClient) CreateSSHKey(ctx context.Context, opts hcloud.SSHKeyCreateOpts) (*hcloud.SSHKey, error) {
	if f.createSSHKey == nil {
		return nil, errNotWired
	}

	return f.createSSHKey(ctx, opts)
}

func (f *fakeClient) UpdateSSHKey(ctx context.Context, key *hcloud.SSHKey, opts hcloud.SSHKeyUpdateOpts) (*hcloud.SSHKey, error) {
	if f.updateSSHKey == nil {
		return nil, errNotWired
	}

	return f.updateSSHKey(ctx, key, opts)
}

func (f *fakeClient) DeleteSSHKey(ctx context.Context, key *hcloud.SSHKey) error {
	if f.deleteSSHKey == nil {
		return errNotWired
	}

	return f.deleteSSHKey(ctx, key)
}

func (f *fakeClient) AllFirewalls(ctx context.Context) ([]*hcloud.Firewall, error) {
	if f.allFirewalls == nil {
		return nil, errNotWired
	}

	return f.allFirewalls(ctx)
}

func (f *fakeClient) GetFirewallByID(ctx context.Context, id int64) (*hcloud.Firewall, error) {
	if f.getFirewallByID == nil {
		return nil, errNotWired
	}

	return f.getFirewallByID(ctx, id)
}

func (f *fakeClient) CreateFirewall(ctx context.Context, opts hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, error) {
	if f.createFirewall == nil {
		return hcloud.FirewallCreateResult{}, errNotWired
	}

	return f.createFirewall(ctx, opts)
}

func (f *fakeClient) UpdateFirewall(ctx context.Context, fw *hcloud.Firewall, opts hcloud.FirewallUpdateOpts) (*hcloud.Firewall, error) {
	if f.updateFirewall == nil {
		return nil, errNotWired
	}

	return f.updateFirewall(ctx, fw, opts)
}

func (f *fakeClient) DeleteFirewall(ctx context.Context, fw *hcloud.Firewall) error {
	if f.deleteFirewall == nil {
		return errNotWired
	}

	return f.deleteFirewall(ctx, fw)
}

func (f *fakeClient) SetFirewallRules(ctx context.Context, fw *hcloud.Firewall, opts hcloud.FirewallSetRulesOpts) ([]*hcloud.Action, error) {
	if f.setRules == nil {
		return nil, errNotWired
	}

	return f.setRules(ctx, fw, opts)
}

func (f *fakeClient) ApplyFirewallResources(ctx context.Context, fw *hcloud.Firewall, resources []hcloud.FirewallResource) ([]*hcloud.Action, error) {
	if f.applyResources == nil {
		return nil, errNotWired
	}

	return f.applyResources(ctx, fw, resources)
}

func (f *fakeClient) RemoveFirewallResources(ctx context.Context, fw *hcloud.Firewall, resources []hcloud.FirewallResource) ([]*hcloud.Action, error) {
	if f.removeResources == nil {
		return nil, errNotWired
	}

	return f.removeResources(ctx, fw, resources)
}

func (f *fakeClient) AllVolumes(ctx context.Context) ([]*hcloud.Volume, error) {
	if f.allVolumes == nil {
		return nil, errNotWired
	}

	return f.allVolumes(ctx)
}

func (f *fakeClient) GetVolumeByID(ctx context.Context, id int64) (*hcloud.Volume, error) {
	if f.getVolumeByID == nil {
		return nil, errNotWired
	}

	return f.getVolumeByID(ctx, id)
}

func (f *fakeClient) CreateVolume(ctx context.Context, opts hcloud.VolumeCreateOpts) (hcloud.VolumeCreateResult, error) {
	if f.createVolume == nil {
		return hcloud.VolumeCreateResult{}, errNotWired
	}

	return f.createVolume(ctx, opts)
}

func (f *fakeClient) DeleteVolume(ctx context.Context, volume *hcloud.Volume) error {
	if f.deleteVolume == nil {
		return errNotWired
	}

	return f.deleteVolume(ctx, volume)
}

func (f *fakeClient) AttachVolume(ctx context.Context, volume *hcloud.Volume, opts hcloud.VolumeAttachOpts) (*hcloud.Action, error) {
	if f.attachVolume == nil {
		return nil, errNotWired
	}

	return f.attachVolume(ctx, volume, opts)
}

func (f *fakeClient) DetachVolume(ctx context.Context, volume *hcloud.Volume) (*hcloud.Action, error) {
	if f.detachVolume == nil {
		return nil, errNotWired
	}

	return f.detachVolume(ctx, volume)
}

func (f *fakeClient) ResizeVolume(ctx context.Context, volume *hcloud.Volume, size int) (*hcloud.Action, error) {
	if f.resizeVolume == nil {
		return nil, errNotWired
	}

	return f.resizeVolume(ctx, volume, size)
}

// newSession spins up an MCP server with all tools registered against
// the given fake client and returns a connected client session.
func newSession(t *testing.T, client hetzner.Client) *mcp.ClientSession {
	t.Helper()

	provider := hetzner.NewProvider(
		hetzner.Config{Token: "test-token"},
		hetzner.WithClientFactory(func(_ hetzner.Config) hetzner.Client {
			return client
		}),
	)

	srv := mcp.NewServer(&mcp.Implementation{Name: "mcp-hetzner", Version: "test"}, nil)
	tools.Register(srv, provider)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := srv.Connect(t.Context(), serverTransport, nil)
	require.NoError(t, err)

	session, err := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil).
		Connect(t.Context(), clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})

	return session
}

// callTool invokes a tool and decodes the structured content into a map.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()

	result, err := session.CallTool(t.Context(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, result.IsError, "tool %s returned an error: %v", name, result.Content)

	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	return decoded
}

// callToolExpectError invokes a tool and returns the error text.
func callToolExpectError(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()

	result, err := session.CallTool(t.Context(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.True(t, result.IsError, "tool %s did not return an error", name)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	return text.Text
}
