// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

// Package hetzner wraps the Hetzner Cloud SDK behind a narrow,
// mockable interface and converts SDK values into the JSON shapes
// returned by the MCP tools.
package hetzner

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// Client exposes the subset of the Hetzner Cloud API the MCP tools need.
// A nil resource together with a nil error means "not found"; callers are
// expected to turn that into a tool-level error.
type Client interface {
	// Servers.
	AllServers(ctx context.Context) ([]*hcloud.Server, error)
	GetServerByID(ctx context.Context, id int64) (*hcloud.Server, error)
	CreateServer(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, error)
	DeleteServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error)
	PowerOnServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error)
	PowerOffServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error)
	RebootServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error)

	// Catalog resources.
	AllImages(ctx context.Context) ([]*hcloud.Image, error)
	AllServerTypes(ctx context.Context) ([]*hcloud.ServerType, error)
	AllLocations(ctx context.Context) ([]*hcloud.Location, error)
	GetServerType(ctx context.Context, idOrName string) (*hcloud.ServerType, error)
	GetImage(ctx context.Context, idOrName string) (*hcloud.Image, error)
	GetLocation(ctx context.Context, idOrName string) (*hcloud.Location, error)

	// SSH keys.
	AllSSHKeys(ctx context.Context) ([]*hcloud.SSHKey, error)
	GetSSHKeyByID(ctx context.Context, id int64) (*hcloud.SSHKey, error)
	CreateSSHKey(ctx context.Context, opts hcloud.SSHKeyCreateOpts) (*hcloud.SSHKey, error)
	UpdateSSHKey(ctx context.Context, key *hcloud.SSHKey, opts hcloud.SSHKeyUpdateOpts) (*hcloud.SSHKey, error)
	DeleteSSHKey(ctx context.Context, key *hcloud.SSHKey) error

	// Firewalls.
	AllFirewalls(ctx context.Context) ([]*hcloud.Firewall, error)
	GetFirewallByID(ctx context.Context, id int64) (*hcloud.Firewall, error)
	CreateFirewall(ctx context.Context, opts hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, error)
	UpdateFirewall(ctx context.Context, fw *hcloud.Firewall, opts hcloud.FirewallUpdateOpts) (*hcloud.Firewall, error)
	DeleteFirewall(ctx context.Context, fw *hcloud.Firewall) error
	SetFirewallRules(ctx context.Context, fw *hcloud.Firewall, opts hcloud.FirewallSetRulesOpts) ([]*hcloud.Action, error)
	ApplyFirewallResources(ctx context.Context, fw *hcloud.Firewall, resources []hcloud.FirewallResource) ([]*hcloud.Action, error)
	RemoveFirewallResources(ctx context.Context, fw *hcloud.Firewall, resources []hcloud.FirewallResource) ([]*hcloud.Action, error)

	// Volumes.
	AllVolumes(ctx context.Context) ([]*hcloud.Volume, error)
	GetVolumeByID(ctx context.Context, id int64) (*hcloud.Volume, error)
	CreateVolume(ctx context.Context, opts hcloud.VolumeCreateOpts) (hcloud.VolumeCreateResult, error)
	DeleteVolume(ctx context.Context, volume *hcloud.Volume) error
	AttachVolume(ctx context.Context, volume *hcloud.Volume, opts hcloud.VolumeAttachOpts) (*hcloud.Action, error)
	DetachVolume(ctx context.Context, volume *hcloud.Volume) (*hcloud.Action, error)
	ResizeVolume(ctx context.Context, volume *hcloud.Volume, size int) (*hcloud.Action, error)
}

// realClient implements Client on top of *hcloud.Client.
type realClient struct {
	client *hcloud.Client
}

// Config holds the settings needed to build an API client.
type Config struct {
	// Token is the Hetzner Cloud API token.
	Token string
	// Endpoint overrides the API endpoint, mainly for tests.
	Endpoint string
	// AppName and AppVersion are sent as the user agent.
	AppName    string
	AppVersion string
}

// NewClient creates a Client talking to the Hetzner Cloud API.
func NewClient(cfg Config) Client {
	opts := []hcloud.ClientOption{
		hcloud.WithToken(cfg.Token),
	}

	if cfg.AppName != "" {
		opts = append(opts, hcloud.WithApplication(cfg.AppName, cfg.AppVersion))
	}

	if cfg.Endpoint != "" {
		opts = append(opts, hcloud.WithEndpoint(cfg.Endpoint))
	}

	return &realClient{client: hcloud.NewClient(opts...)}
}

func (c *realClient) AllServers(ctx context.Context) ([]*hcloud.Server, error) {
	return c.client.Server.All(ctx)
}

func (c *realClient) GetServerByID(ctx context.Context, id int64) (*hcloud.Server, error) {
	server, _, err := c.client.Server.GetByID(ctx, id)

	return server, err
}

func (c *realClient) CreateServer(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, error) {
	result, _, err := c.client.Server.Create(ctx, opts)

	return result, err
}

func (c *realClient) DeleteServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error) {
	result, _, err := c.client.Server.DeleteWithResult(ctx, server)
	if err != nil {
		return nil, err
	}

	return result.Action, nil
}

func (c *realClient) PowerOnServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error) {
	action, _, err := c.client.Server.Poweron(ctx, server)

	return action, err
}

func (c *realClient) PowerOffServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error) {
	action, _, err := c.client.Server.Poweroff(ctx, server)

	return action, err
}

func (c *realClient) RebootServer(ctx context.Context, server *hcloud.Server) (*hcloud.Action, error) {
	action, _, err := c.client.Server.Reboot(ctx, server)

	return action, err
}

func (c *realClient) AllImages(ctx context.Context) ([]*hcloud.Image, error) {
	return c.client.Image.All(ctx)
}

func (c *realClient) AllServerTypes(ctx context.Context) ([]*hcloud.ServerType, error) {
	return c.client.ServerType.All(ctx)
}

func (c *realClient) AllLocations(ctx context.Context) ([]*hcloud.Location, error) {
	return c.client.Location.All(ctx)
}

func (c *realClient) GetServerType(ctx context.Context, idOrName string) (*hcloud.ServerType, error) {
	serverType, _, err := c.client.ServerType.Get(ctx, idOrName)

	return serverType, err
}

func (c *realClient) GetImage(ctx context.Context, idOrName string) (*hcloud.Image, error) {
	image, _, err := c.client.Image.Get(ctx, idOrName)

	return image, err
}

func (c *realClient) GetLocation(ctx context.Context, idOrName string) (*hcloud.Location, error) {
	location, _, err := c.client.Location.Get(ctx, idOrName)

	return location, err
}

func (c *realClient) AllSSHKeys(ctx context.Context) ([]*hcloud.SSHKey, error) {
	return c.client.SSHKey.All(ctx)
}

func (c *realClient) GetSSHKeyByID(ctx context.Context, id int64) (*hcloud.SSHKey, error) {
	key, _, err := c.client.SSHKey.GetByID(ctx, id)

	return key, err
}

func (c *realClient) CreateSSHKey(ctx context.Context, opts hcloud.SSHKeyCreateOpts) (*hcloud.SSHKey, error) {
	key, _, err := c.client.SSHKey.Create(ctx, opts)

	return key, err
}

func (c *realClient) UpdateSSHKey(ctx context.Context, key *hcloud.SSHKey, opts hcloud.SSHKeyUpdateOpts) (*hcloud.SSHKey, error) {
	updated, _, err := c.client.SSHKey.Update(ctx, key, opts)

	return updated, err
}

func (c *realClient) DeleteSSHKey(ctx context.Context, key *hcloud.SSHKey) error {
	_, err := c.client.SSHKey.Delete(ctx, key)

	return err
}

func (c *realClient) AllFirewalls(ctx context.Context) ([]*hcloud.Firewall, error) {
	return c.client.Firewall.All(ctx)
}

func (c *realClient) GetFirewallByID(ctx context.Context, id int64) (*hcloud.Firewall, error) {
	fw, _, err := c.client.Firewall.GetByID(ctx, id)

	return fw, err
}

func (c *realClient) CreateFirewall(ctx context.Context, opts hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, error) {
	result, _, err := c.client.Firewall.Create(ctx, opts)

	return result, err
}

func (c *realClient) UpdateFirewall(ctx context.Context, fw *hcloud.Firewall, opts hcloud.FirewallUpdateOpts) (*hcloud.Firewall, error) {
	updated, _, err := c.client.Firewall.Update(ctx, fw, opts)

	return updated, err
}

func (c *realClient) DeleteFirewall(ctx context.Context, fw *hcloud.Firewall) error {
	_, err := c.client.Firewall.Delete(ctx, fw)

	return err
}

func (c *realClient) SetFirewallRules(ctx context.Context, fw *hcloud.Firewall, opts hcloud.FirewallSetRulesOpts) ([]*hcloud.Action, error) {
	actions, _, err := c.client.Firewall.SetRules(ctx, fw, opts)

	return actions, err
}

func (c *realClient) ApplyFirewallResources(ctx context.Context, fw *hcloud.Firewall, resources []hcloud.FirewallResource) ([]*hcloud.Action, error) {
	actions, _, err := c.client.Firewall.ApplyResources(ctx, fw, resources)

	return actions, err
}

func (c *realClient) RemoveFirewallResources(ctx context.Context, fw *hcloud.Firewall, resources []hcloud.FirewallResource) ([]*hcloud.Action, error) {
	actions, _, err := c.client.Firewall.RemoveResources(ctx, fw, resources)

	return actions, err
}

func (c *realClient) AllVolumes(ctx context.Context) ([]*hcloud.Volume, error) {
	return c.client.Volume.All(ctx)
}

func (c *realClient) GetVolumeByID(ctx context.Context, id int64) (*hcloud.Volume, error) {
	volume, _, err := c.client.Volume.GetByID(ctx, id)

	return volume, err
}

func (c *realClient) CreateVolume(ctx context.Context, opts hcloud.VolumeCreateOpts) (hcloud.VolumeCreateResult, error) {
	result, _, err := c.client.Volume.Create(ctx, opts)

	return result, err
}

func (c *realClient) DeleteVolume(ctx context.Context, volume *hcloud.Volume) error {
	_, err := c.client.Volume.Delete(ctx, volume)

	return err
}

func (c *realClient) AttachVolume(ctx context.Context, volume *hcloud.Volume, opts hcloud.VolumeAttachOpts) (*hcloud.Action, error) {
	action, _, err := c.client.Volume.AttachWithOpts(ctx, volume, opts)

	return action, err
}

func (c *realClient) DetachVolume(ctx context.Context, volume *hcloud.Volume) (*hcloud.Action, error) {
	action, _, err := c.client.Volume.Detach(ctx, volume)

	return action, err
}

func (c *realClient) ResizeVolume(ctx context.Context, volume *hcloud.Volume, size int) (*hcloud.Action, error) {
	action, _, err := c.client.Volume.Resize(ctx, volume, size)

	return action, err
}
