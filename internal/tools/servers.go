// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcp-hetzner/mcp-hetzner/internal/hetzner"
)

// ListServersParams has no fields, list_servers takes no arguments.
type ListServersParams struct{}

// ServerIDParams identifies a server.
type ServerIDParams struct {
	ServerID int64 `json:"server_id" jsonschema:"The ID of the server"`
}

// CreateServerParams configures a new server.
type CreateServerParams struct {
	Name       string  `json:"name" jsonschema:"Name of the server"`
	ServerType string  `json:"server_type" jsonschema:"Server type (e.g. cx22, cpx11, etc.)"`
	Image      string  `json:"image" jsonschema:"Image name or ID (e.g. ubuntu-24.04, debian-12, etc.)"`
	Location   string  `json:"location,omitempty" jsonschema:"Location (e.g. nbg1, fsn1, etc.), defaults to nbg1"`
	SSHKeys    []int64 `json:"ssh_keys,omitempty" jsonschema:"List of SSH key IDs"`
}

// ServersResult wraps the server list.
type ServersResult struct {
	Servers []hetzner.ServerInfo `json:"servers"`
}

// ServerResult wraps a single server.
type ServerResult struct {
	Server hetzner.ServerInfo `json:"server"`
}

// CreateServerResult reports the created server, its provisioning
// action and, when no SSH keys were given, the generated root password.
type CreateServerResult struct {
	Server       hetzner.ServerInfo   `json:"server"`
	Action       *hetzner.ActionInfo  `json:"action,omitempty"`
	NextActions  []hetzner.ActionInfo `json:"next_actions,omitempty"`
	RootPassword string               `json:"root_password,omitempty"`
}

func (h *handler) listServers(ctx context.Context, _ *mcp.CallToolRequest, _ ListServersParams) (*mcp.CallToolResult, ServersResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ServersResult{}, err
	}

	servers, err := client.AllServers(ctx)
	if err != nil {
		return nil, ServersResult{}, wrapErr("list servers", err)
	}

	result := ServersResult{Servers: make([]hetzner.ServerInfo, 0, len(servers))}
	for _, server := range servers {
		result.Servers = append(result.Servers, hetzner.ConvertServer(server))
	}

	return nil, result, nil
}

// getServerByID fetches a server and maps the missing case to the
// uniform not-found error.
func getServerByID(ctx context.Context, client hetzner.Client, id int64) (*hcloud.Server, error) {
	server, err := client.GetServerByID(ctx, id)
	if err != nil {
		return nil, wrapErr("get server", err)
	}

	if server == nil {
		return nil, fmt.Errorf("server with ID %d not found", id)
	}

	return server, nil
}

func (h *handler) getServer(ctx context.Context, _ *mcp.CallToolRequest, params ServerIDParams) (*mcp.CallToolResult, ServerResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ServerResult{}, err
	}

	server, err := getServerByID(ctx, client, params.ServerID)
	if err != nil {
		return nil, ServerResult{}, err
	}

	return nil, ServerResult{Server: hetzner.ConvertServer(server)}, nil
}

// resolveServerType resolves a server type by name or ID. On a miss it
// lists the catalog so the caller sees what is available.
func resolveServerType(ctx context.Context, client hetzner.Client, name string) (*hcloud.ServerType, error) {
	serverType, err := client.GetServerType(ctx, name)
	if err != nil {
		return nil, wrapErr("look up server type", err)
	}

	if serverType != nil {
		return serverType, nil
	}

	available, err := client.AllServerTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("server type '%s' not found", name)
	}

	names := make([]string, 0, len(available))
	for _, st := range available {
		names = append(names, st.Name)
	}

	return nil, fmt.Errorf("server type '%s' not found, available types: %s", name, strings.Join(names, ", "))
}

func resolveImage(ctx context.Context, client hetzner.Client, name string) (*hcloud.Image, error) {
	image, err := client.GetImage(ctx, name)
	if err != nil {
		return nil, wrapErr("look up image", err)
	}

	if image != nil {
		return image, nil
	}

	available, err := client.AllImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("image '%s' not found", name)
	}

	names := make([]string, 0, len(available))
	for _, img := range available {
		if img.Name != "" {
			names = append(names, img.Name)
		}
	}

	return nil, fmt.Errorf("image '%s' not found, available images: %s", name, strings.Join(names, ", "))
}

func resolveLocation(ctx context.Context, client hetzner.Client, name string) (*hcloud.Location, error) {
	location, err := client.GetLocation(ctx, name)
	if err != nil {
		return nil, wrapErr("look up location", err)
	}

	if location != nil {
		return location, nil
	}

	available, err := client.AllLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("location '%s' not found", name)
	}

	names := make([]string, 0, len(available))
	for _, loc := range available {
		names = append(names, loc.Name)
	}

	return nil, fmt.Errorf("location '%s' not found, available locations: %s", name, strings.Join(names, ", "))
}

func (h *handler) createServer(ctx context.Context, _ *mcp.CallToolRequest, params CreateServerParams) (*mcp.CallToolResult, CreateServerResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, CreateServerResult{}, err
	}

	serverType, err := resolveServerType(ctx, client, params.ServerType)
	if err != nil {
		return nil, CreateServerResult{}, err
	}

	image, err := resolveImage(ctx, client, params.Image)
	if err != nil {
		return nil, CreateServerResult{}, err
	}

	locationName := params.Location
	if locationName == "" {
		locationName = DefaultLocation
	}

	location, err := resolveLocation(ctx, client, locationName)
	if err != nil {
		return nil, CreateServerResult{}, err
	}

	sshKeys := make([]*hcloud.SSHKey, 0, len(params.SSHKeys))
	for _, keyID := range params.SSHKeys {
		key, err := client.GetSSHKeyByID(ctx, keyID)
		if err != nil {
			return nil, CreateServerResult{}, wrapErr(fmt.Sprintf("look up SSH key %d", keyID), err)
		}

		if key == nil {
			return nil, CreateServerResult{}, fmt.Errorf("SSH key with ID %d not found", keyID)
		}

		sshKeys = append(sshKeys, key)
	}

	created, err := client.CreateServer(ctx, hcloud.ServerCreateOpts{
		Name:       params.Name,
		ServerType: serverType,
		Image:      image,
		Location:   location,
		SSHKeys:    sshKeys,
	})
	if err != nil {
		return nil, CreateServerResult{}, wrapErr("create server", err)
	}

	result := CreateServerResult{
		Action:       hetzner.ConvertAction(created.Action),
		RootPassword: created.RootPassword,
	}

	if created.Server != nil {
		result.Server = hetzner.ConvertServer(created.Server)
	}

	if len(created.NextActions) > 0 {
		result.NextActions = hetzner.ConvertActions(created.NextActions)
	}

	return nil, result, nil
}

func (h *handler) deleteServer(ctx context.Context, _ *mcp.CallToolRequest, params ServerIDParams) (*mcp.CallToolResult, ActionResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ActionResult{}, err
	}

	server, err := getServerByID(ctx, client, params.ServerID)
	if err != nil {
		return nil, ActionResult{}, err
	}

	action, err := client.DeleteServer(ctx, server)
	if err != nil {
		return nil, ActionResult{}, wrapErr("delete server", err)
	}

	return nil, ActionResult{Success: true, Action: hetzner.ConvertAction(action)}, nil
}

func (h *handler) powerOn(ctx context.Context, _ *mcp.CallToolRequest, params ServerIDParams) (*mcp.CallToolResult, ActionResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ActionResult{}, err
	}

	server, err := getServerByID(ctx, client, params.ServerID)
	if err != nil {
		return nil, ActionResult{}, err
	}

	action, err := client.PowerOnServer(ctx, server)
	if err != nil {
		return nil, ActionResult{}, wrapErr("power on server", err)
	}

	return nil, ActionResult{Success: true, Action: hetzner.ConvertAction(action)}, nil
}

func (h *handler) powerOff(ctx context.Context, _ *mcp.CallToolRequest, params ServerIDParams) (*mcp.CallToolResult, ActionResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ActionResult{}, err
	}

	server, err := getServerByID(ctx, client, params.ServerID)
	if err != nil {
		return nil, ActionResult{}, err
	}

	action, err := client.PowerOffServer(ctx, server)
	if err != nil {
		return nil, ActionResult{}, wrapErr("power off server", err)
	}

	return nil, ActionResult{Success: true, Action: hetzner.ConvertAction(action)}, nil
}

func (h *handler) reboot(ctx context.Context, _ *mcp.CallToolRequest, params ServerIDParams) (*mcp.CallToolResult, ActionResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ActionResult{}, err
	}

	server, err := getServerByID(ctx, client, params.ServerID)
	if err != nil {
		return nil, ActionResult{}, err
	}

	action, err := client.RebootServer(ctx, server)
	if err != nil {
		return nil, ActionResult{}, wrapErr("reboot server", err)
	}

	return nil, ActionResult{Success: true, Action: hetzner.ConvertAction(action)}, nil
}
