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

// ListFirewallsParams has no fields, list_firewalls takes no arguments.
type ListFirewallsParams struct{}

// FirewallIDParams identifies a firewall.
type FirewallIDParams struct {
	FirewallID int64 `json:"firewall_id" jsonschema:"The ID of the firewall"`
}

// CreateFirewallParams configures a new firewall.
type CreateFirewallParams struct {
	Name      string                   `json:"name" jsonschema:"Name of the firewall"`
	Rules     []FirewallRuleParams     `json:"rules,omitempty" jsonschema:"List of firewall rules"`
	Resources []FirewallResourceParams `json:"resources,omitempty" jsonschema:"List of resources to apply the firewall to"`
	Labels    map[string]string        `json:"labels,omitempty" jsonschema:"User-defined labels (key-value pairs)"`
}

// UpdateFirewallParams changes the name or labels of a firewall.
type UpdateFirewallParams struct {
	FirewallID int64             `json:"firewall_id" jsonschema:"The ID of the firewall"`
	Name       string            `json:"name,omitempty" jsonschema:"New name for the firewall"`
	Labels     map[string]string `json:"labels,omitempty" jsonschema:"User-defined labels (key-value pairs)"`
}

// SetFirewallRulesParams replaces the rule set of a firewall.
type SetFirewallRulesParams struct {
	FirewallID int64                `json:"firewall_id" jsonschema:"The ID of the firewall"`
	Rules      []FirewallRuleParams `json:"rules" jsonschema:"List of firewall rules, replaces all existing rules"`
}

// FirewallResourcesParams targets resources to apply or remove a firewall.
type FirewallResourcesParams struct {
	FirewallID int64                    `json:"firewall_id" jsonschema:"The ID of the firewall"`
	Resources  []FirewallResourceParams `json:"resources" jsonschema:"List of resources to apply/remove the firewall to/from"`
}

// FirewallsResult wraps the firewall list.
type FirewallsResult struct {
	Firewalls []hetzner.FirewallInfo `json:"firewalls"`
}

// FirewallResult wraps a single firewall.
type FirewallResult struct {
	Firewall hetzner.FirewallInfo `json:"firewall"`
}

// CreateFirewallResult reports the created firewall and the actions
// applying it to its initial resources.
type CreateFirewallResult struct {
	Firewall hetzner.FirewallInfo `json:"firewall"`
	Actions  []hetzner.ActionInfo `json:"actions,omitempty"`
}

func getFirewallByID(ctx context.Context, client hetzner.Client, id int64) (*hcloud.Firewall, error) {
	fw, err := client.GetFirewallByID(ctx, id)
	if err != nil {
		return nil, wrapErr("get firewall", err)
	}

	if fw == nil {
		return nil, fmt.Errorf("firewall with ID %d not found", id)
	}

	return fw, nil
}

func (h *handler) listFirewalls(ctx context.Context, _ *mcp.CallToolRequest, _ ListFirewallsParams) (*mcp.CallToolResult, FirewallsResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, FirewallsResult{}, err
	}

	firewalls, err := client.AllFirewalls(ctx)
	if err != nil {
		return nil, FirewallsResult{}, wrapErr("list firewalls", err)
	}

	result := FirewallsResult{Firewalls: make([]hetzner.FirewallInfo, 0, len(firewalls))}
	for _, fw := range firewalls {
		result.Firewalls = append(result.Firewalls, hetzner.ConvertFirewall(fw))
	}

	return nil, result, nil
}

func (h *handler) getFirewall(ctx context.Context, _ *mcp.CallToolRequest, params FirewallIDParams) (*mcp.CallToolResult, FirewallResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, FirewallResult{}, err
	}

	fw, err := getFirewallByID(ctx, client, params.FirewallID)
	if err != nil {
		return nil, FirewallResult{}, err
	}

	return nil, FirewallResult{Firewall: hetzner.ConvertFirewall(fw)}, nil
}

func (h *handler) createFirewall(ctx context.Context, _ *mcp.CallToolRequest, params CreateFirewallParams) (*mcp.CallToolResult, CreateFirewallResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, CreateFirewallResult{}, err
	}

	rules, err := buildRules(params.Rules)
	if err != nil {
		return nil, CreateFirewallResult{}, err
	}

	resources, err := buildResources(ctx, client, params.Resources)
	if err != nil {
		return nil, CreateFirewallResult{}, err
	}

	created, err := client.CreateFirewall(ctx, hcloud.FirewallCreateOpts{
		Name:    params.Name,
		Rules:   rules,
		Labels:  params.Labels,
		ApplyTo: resources,
	})
	if err != nil {
		return nil, CreateFirewallResult{}, wrapErr("create firewall", err)
	}

	result := CreateFirewallResult{}
	if created.Firewall != nil {
		result.Firewall = hetzner.ConvertFirewall(created.Firewall)
	}

	if len(created.Actions) > 0 {
		result.Actions = hetzner.ConvertActions(created.Actions)
	}

	return nil, result, nil
}

func (h *handler) updateFirewall(ctx context.Context, _ *mcp.CallToolRequest, params UpdateFirewallParams) (*mcp.CallToolResult, FirewallResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, FirewallResult{}, err
	}

	fw, err := getFirewallByID(ctx, client, params.FirewallID)
	if err != nil {
		return nil, FirewallResult{}, err
	}

	updated, err := client.UpdateFirewall(ctx, fw, hcloud.FirewallUpdateOpts{
		Name:   params.Name,
		Labels: params.Labels,
	})
	if err != nil {
		return nil, FirewallResult{}, wrapErr("update firewall", err)
	}

	return nil, FirewallResult{Firewall: hetzner.ConvertFirewall(updated)}, nil
}

func (h *handler) deleteFirewall(ctx context.Context, _ *mcp.CallToolRequest, params FirewallIDParams) (*mcp.CallToolResult, SuccessResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, SuccessResult{}, err
	}

	fw, err := getFirewallByID(ctx, client, params.FirewallID)
	if err != nil {
		return nil, SuccessResult{}, err
	}

	if err := client.DeleteFirewall(ctx, fw); err != nil {
		return nil, SuccessResult{}, wrapErr("delete firewall", err)
	}

	return nil, SuccessResult{Success: true}, nil
}

func (h *handler) setFirewallRules(ctx context.Context, _ *mcp.CallToolRequest, params SetFirewallRulesParams) (*mcp.CallToolResult, ActionsResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ActionsResult{}, err
	}

	fw, err := getFirewallByID(ctx, client, params.FirewallID)
	if err != nil {
		return nil, ActionsResult{}, err
	}

	rules, err := buildRules(params.Rules)
	if err != nil {
		return nil, ActionsResult{}, err
	}

	actions, err := client.SetFirewallRules(ctx, fw, hcloud.FirewallSetRulesOpts{Rules: rules})
	if err != nil {
		return nil, ActionsResult{}, wrapErr("set firewall rules", err)
	}

	return nil, ActionsResult{Success: true, Actions: hetzner.ConvertActions(actions)}, nil
}

func (h *handler) applyFirewallToResources(ctx context.Context, _ *mcp.CallToolRequest, params FirewallResourcesParams) (*mcp.CallToolResult, ActionsResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ActionsResult{}, err
	}

	fw, err := getFirewallByID(ctx, client, params.FirewallID)
	if err != nil {
		return nil, ActionsResult{}, err
	}

	resources, err := buildResources(ctx, client, params.Resources)
	if err != nil {
		return nil, ActionsResult{}, err
	}

	actions, err := client.ApplyFirewallResources(ctx, fw, resources)
	if err != nil {
		return nil, ActionsResult{}, wrapErr("apply firewall to resources", err)
	}

	return nil, ActionsResult{Success: true, Actions: hetzner.ConvertActions(actions)}, nil
}

func (h *handler) removeFirewallFromResources(ctx context.Context, _ *mcp.CallToolRequest, params FirewallResourcesParams) (*mcp.CallToolResult, ActionsResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ActionsResult{}, err
	}

	fw, err := getFirewallByID(ctx, client, params.FirewallID)
	if err != nil {
		return nil, ActionsResult{}, err
	}

	resources, err := buildResources(ctx, client, params.Resources)
	if err != nil {
		return nil, ActionsResult{}, err
	}

	actions, err := client.RemoveFirewallResources(ctx, fw, resources)
	if err != nil {
		return nil, ActionsResult{}, wrapErr("remove firewall from resources", err)
	}

	return nil, ActionsResult{Success: true, Actions: hetzner.ConvertActions(actions)}, nil
}
