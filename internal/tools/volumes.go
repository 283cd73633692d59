// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package tools

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcp-hetzner/mcp-hetzner/internal/hetzner"
)

// ListVolumesParams has no fields, list_volumes takes no arguments.
type ListVolumesParams struct{}

// VolumeIDParams identifies a volume.
type VolumeIDParams struct {
	VolumeID int64 `json:"volume_id" jsonschema:"The ID of the volume"`
}

// CreateVolumeParams configures a new volume. Location and server are
// mutually exclusive, the API derives the location from the server.
type CreateVolumeParams struct {
	Name      string            `json:"name" jsonschema:"Name of the volume"`
	Size      int               `json:"size" jsonschema:"Size of the volume in GB (min 10, max 10240)"`
	Location  string            `json:"location,omitempty" jsonschema:"Location where the volume will be created (e.g. nbg1, fsn1)"`
	Server    int64             `json:"server,omitempty" jsonschema:"ID of the server to attach the volume to"`
	Automount bool              `json:"automount,omitempty" jsonschema:"Auto-mount the volume after attaching it"`
	Format    string            `json:"format,omitempty" jsonschema:"Filesystem format (e.g. xfs, ext4)"`
	Labels    map[string]string `json:"labels,omitempty" jsonschema:"User-defined labels (key-value pairs)"`
}

// AttachVolumeParams attaches a volume to a server.
type AttachVolumeParams struct {
	VolumeID  int64 `json:"volume_id" jsonschema:"The ID of the volume"`
	ServerID  int64 `json:"server_id" jsonschema:"The ID of the server to attach the volume to"`
	Automount bool  `json:"automount,omitempty" jsonschema:"Auto-mount the volume after attaching it"`
}

// ResizeVolumeParams grows a volume.
type ResizeVolumeParams struct {
	VolumeID int64 `json:"volume_id" jsonschema:"The ID of the volume"`
	Size     int   `json:"size" jsonschema:"New size of the volume in GB (must be greater than current size)"`
}

// VolumesResult wraps the volume list.
type VolumesResult struct {
	Volumes []hetzner.VolumeInfo `json:"volumes"`
}

// VolumeResult wraps a single volume.
type VolumeResult struct {
	Volume hetzner.VolumeInfo `json:"volume"`
}

// CreateVolumeResult reports the created volume and its actions.
type CreateVolumeResult struct {
	Volume      hetzner.VolumeInfo   `json:"volume"`
	Action      *hetzner.ActionInfo  `json:"action,omitempty"`
	NextActions []hetzner.ActionInfo `json:"next_actions,omitempty"`
}

func getVolumeByID(ctx context.Context, client hetzner.Client, id int64) (*hcloud.Volume, error) {
	volume, err := client.GetVolumeByID(ctx, id)
	if err != nil {
		return nil, wrapErr("get volume", err)
	}

	if volume == nil {
		return nil, fmt.Errorf("volume with ID %d not found", id)
	}

	return volume, nil
}

func (h *handler) listVolumes(ctx context.Context, _ *mcp.CallToolRequest, _ ListVolumesParams) (*mcp.CallToolResult, VolumesResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, VolumesResult{}, err
	}

	volumes, err := client.AllVolumes(ctx)
	if err != nil {
		return nil, VolumesResult{}, wrapErr("list volumes", err)
	}

	result := VolumesResult{Volumes: make([]hetzner.VolumeInfo, 0, len(volumes))}
	for _, volume := range volumes {
		result.Volumes = append(result.Volumes, hetzner.ConvertVolume(volume))
	}

	return nil, result, nil
}

func (h *handler) getVolume(ctx context.Context, _ *mcp.CallToolRequest, params VolumeIDParams) (*mcp.CallToolResult, VolumeResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, VolumeResult{}, err
	}

	volume, err := getVolumeByID(ctx, client, params.VolumeID)
	if err != nil {
		return nil, VolumeResult{}, err
	}

	return nil, VolumeResult{Volume: hetzner.ConvertVolume(volume)}, nil
}

func (h *handler) createVolume(ctx context.Context, _ *mcp.CallToolRequest, params CreateVolumeParams) (*mcp.CallToolResult, CreateVolumeResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, CreateVolumeResult{}, err
	}

	opts := hcloud.VolumeCreateOpts{
		Name:   params.Name,
		Size:   params.Size,
		Labels: params.Labels,
	}

	if params.Location != "" {
		location, err := client.GetLocation(ctx, params.Location)
		if err != nil {
			return nil, CreateVolumeResult{}, wrapErr("look up location", err)
		}

		if location == nil {
			return nil, CreateVolumeResult{}, fmt.Errorf("location '%s' not found", params.Location)
		}

		opts.Location = location
	}

	if params.Server != 0 {
		server, err := getServerByID(ctx, client, params.Server)
		if err != nil {
			return nil, CreateVolumeResult{}, err
		}

		opts.Server = server
	}

	if params.Automount {
		opts.Automount = hcloud.Ptr(true)
	}

	if params.Format != "" {
		opts.Format = hcloud.Ptr(params.Format)
	}

	created, err := client.CreateVolume(ctx, opts)
	if err != nil {
		return nil, CreateVolumeResult{}, wrapErr("create volume", err)
	}

	result := CreateVolumeResult{
		Action: hetzner.ConvertAction(created.Action),
	}

	if created.Volume != nil {
		result.Volume = hetzner.ConvertVolume(created.Volume)
	}

	if len(created.NextActions) > 0 {
		result.NextActions = hetzner.ConvertActions(created.NextActions)
	}

	return nil, result, nil
}

func (h *handler) deleteVolume(ctx context.Context, _ *mcp.CallToolRequest, params VolumeIDParams) (*mcp.CallToolResult, SuccessResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, SuccessResult{}, err
	}

	volume, err := getVolumeByID(ctx, client, params.VolumeID)
	if err != nil {
		return nil, SuccessResult{}, err
	}

	if err := client.DeleteVolume(ctx, volume); err != nil {
		return nil, SuccessResult{}, wrapErr("delete volume", err)
	}

	return nil, SuccessResult{Success: true}, nil
}

func (h *handler) attachVolume(ctx context.Context, _ *mcp.CallToolRequest, params AttachVolumeParams) (*mcp.CallToolResult, ActionResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ActionResult{}, err
	}

	volume, err := getVolumeByID(ctx, client, params.VolumeID)
	if err != nil {
		return nil, ActionResult{}, err
	}

	server, err := getServerByID(ctx, client, params.ServerID)
	if err != nil {
		return nil, ActionResult{}, err
	}

	opts := hcloud.VolumeAttachOpts{Server: server}
	if params.Automount {
		opts.Automount = hcloud.Ptr(true)
	}

	action, err := client.AttachVolume(ctx, volume, opts)
	if err != nil {
		return nil, ActionResult{}, wrapErr("attach volume", err)
	}

	return nil, ActionResult{Success: true, Action: hetzner.ConvertAction(action)}, nil
}

func (h *handler) detachVolume(ctx context.Context, _ *mcp.CallToolRequest, params VolumeIDParams) (*mcp.CallToolResult, ActionResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ActionResult{}, err
	}

	volume, err := getVolumeByID(ctx, client, params.VolumeID)
	if err != nil {
		return nil, ActionResult{}, err
	}

	if volume.Server == nil {
		return nil, ActionResult{}, fmt.Errorf("volume with ID %d is not attached to any server", params.VolumeID)
	}

	action, err := client.DetachVolume(ctx, volume)
	if err != nil {
		return nil, ActionResult{}, wrapErr("detach volume", err)
	}

	return nil, ActionResult{Success: true, Action: hetzner.ConvertAction(action)}, nil
}

func (h *handler) resizeVolume(ctx context.Context, _ *mcp.CallToolRequest, params ResizeVolumeParams) (*mcp.CallToolResult, ActionResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ActionResult{}, err
	}

	volume, err := getVolumeByID(ctx, client, params.VolumeID)
	if err != nil {
		return nil, ActionResult{}, err
	}

	if params.Size <= volume.Size {
		return nil, ActionResult{}, fmt.Errorf("new size (%d GB) must be greater than current size (%d GB)", params.Size, volume.Size)
	}

	action, err := client.ResizeVolume(ctx, volume, params.Size)
	if err != nil {
		return nil, ActionResult{}, wrapErr("resize volume", err)
	}

	return nil, ActionResult{Success: true, Action: hetzner.ConvertAction(action)}, nil
}
