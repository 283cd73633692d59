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

// ListSSHKeysParams has no fields, list_ssh_keys takes no arguments.
type ListSSHKeysParams struct{}

// SSHKeyIDParams identifies an SSH key.
type SSHKeyIDParams struct {
	SSHKeyID int64 `json:"ssh_key_id" jsonschema:"The ID of the SSH key"`
}

// CreateSSHKeyParams uploads a new public key.
type CreateSSHKeyParams struct {
	Name      string            `json:"name" jsonschema:"Name of the SSH key"`
	PublicKey string            `json:"public_key" jsonschema:"The public key in OpenSSH format"`
	Labels    map[string]string `json:"labels,omitempty" jsonschema:"User-defined labels (key-value pairs)"`
}

// UpdateSSHKeyParams changes the name or labels of an SSH key.
type UpdateSSHKeyParams struct {
	SSHKeyID int64             `json:"ssh_key_id" jsonschema:"The ID of the SSH key"`
	Name     string            `json:"name" jsonschema:"New name for the SSH key"`
	Labels   map[string]string `json:"labels,omitempty" jsonschema:"User-defined labels (key-value pairs)"`
}

// SSHKeysResult wraps the SSH key list.
type SSHKeysResult struct {
	SSHKeys []hetzner.SSHKeyInfo `json:"ssh_keys"`
}

// SSHKeyResult wraps a single SSH key.
type SSHKeyResult struct {
	SSHKey hetzner.SSHKeyInfo `json:"ssh_key"`
}

func getSSHKeyByID(ctx context.Context, client hetzner.Client, id int64) (*hcloud.SSHKey, error) {
	key, err := client.GetSSHKeyByID(ctx, id)
	if err != nil {
		return nil, wrapErr("get SSH key", err)
	}

	if key == nil {
		return nil, fmt.Errorf("SSH key with ID %d not found", id)
	}

	return key, nil
}

func (h *handler) listSSHKeys(ctx context.Context, _ *mcp.CallToolRequest, _ ListSSHKeysParams) (*mcp.CallToolResult, SSHKeysResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, SSHKeysResult{}, err
	}

	keys, err := client.AllSSHKeys(ctx)
	if err != nil {
		return nil, SSHKeysResult{}, wrapErr("list SSH keys", err)
	}

	result := SSHKeysResult{SSHKeys: make([]hetzner.SSHKeyInfo, 0, len(keys))}
	for _, key := range keys {
		result.SSHKeys = append(result.SSHKeys, hetzner.ConvertSSHKey(key))
	}

	return nil, result, nil
}

func (h *handler) getSSHKey(ctx context.Context, _ *mcp.CallToolRequest, params SSHKeyIDParams) (*mcp.CallToolResult, SSHKeyResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, SSHKeyResult{}, err
	}

	key, err := getSSHKeyByID(ctx, client, params.SSHKeyID)
	if err != nil {
		return nil, SSHKeyResult{}, err
	}

	return nil, SSHKeyResult{SSHKey: hetzner.ConvertSSHKey(key)}, nil
}

func (h *handler) createSSHKey(ctx context.Context, _ *mcp.CallToolRequest, params CreateSSHKeyParams) (*mcp.CallToolResult, SSHKeyResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, SSHKeyResult{}, err
	}

	key, err := client.CreateSSHKey(ctx, hcloud.SSHKeyCreateOpts{
		Name:      params.Name,
		PublicKey: params.PublicKey,
		Labels:    params.Labels,
	})
	if err != nil {
		return nil, SSHKeyResult{}, wrapErr("create SSH key", err)
	}

	return nil, SSHKeyResult{SSHKey: hetzner.ConvertSSHKey(key)}, nil
}

func (h *handler) updateSSHKey(ctx context.Context, _ *mcp.CallToolRequest, params UpdateSSHKeyParams) (*mcp.CallToolResult, SSHKeyResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, SSHKeyResult{}, err
	}

	key, err := getSSHKeyByID(ctx, client, params.SSHKeyID)
	if err != nil {
		return nil, SSHKeyResult{}, err
	}

	updated, err := client.UpdateSSHKey(ctx, key, hcloud.SSHKeyUpdateOpts{
		Name:   params.Name,
		Labels: params.Labels,
	})
	if err != nil {
		return nil, SSHKeyResult{}, wrapErr("update SSH key", err)
	}

	return nil, SSHKeyResult{SSHKey: hetzner.ConvertSSHKey(updated)}, nil
}

func (h *handler) deleteSSHKey(ctx context.Context, _ *mcp.CallToolRequest, params SSHKeyIDParams) (*mcp.CallToolResult, SuccessResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, SuccessResult{}, err
	}

	key, err := getSSHKeyByID(ctx, client, params.SSHKeyID)
	if err != nil {
		return nil, SuccessResult{}, err
	}

	if err := client.DeleteSSHKey(ctx, key); err != nil {
		return nil, SuccessResult{}, wrapErr("delete SSH key", err)
	}

	return nil, SuccessResult{Success: true}, nil
}
