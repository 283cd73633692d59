// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

// Package tools registers the Hetzner Cloud MCP tools on a server.
// Each tool is a thin adapter: validate the call, invoke the cloud
// API, convert the result.
package tools

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcp-hetzner/mcp-hetzner/internal/hetzner"
)

// ErrNoToken is returned when a tool call carries no API token and no
// default token was configured.
var ErrNoToken = errors.New("no Hetzner Cloud API token available, configure one or send it in the token header")

// DefaultLocation is used by create_server when no location is given.
const DefaultLocation = "nbg1"

// Names lists all registered tools in registration order.
var Names = []string{
	"list_servers",
	"get_server",
	"create_server",
	"delete_server",
	"power_on",
	"power_off",
	"reboot",
	"list_images",
	"list_server_types",
	"list_locations",
	"list_firewalls",
	"get_firewall",
	"create_firewall",
	"update_firewall",
	"delete_firewall",
	"set_firewall_rules",
	"apply_firewall_to_resources",
	"remove_firewall_from_resources",
	"list_volumes",
	"get_volume",
	"create_volume",
	"delete_volume",
	"attach_volume",
	"detach_volume",
	"resize_volume",
	"list_ssh_keys",
	"get_ssh_key",
	"create_ssh_key",
	"update_ssh_key",
	"delete_ssh_key",
}

// handler carries the dependencies shared by all tool handlers.
type handler struct {
	provider *hetzner.Provider
}

// Register adds all Hetzner Cloud tools to srv and returns their names.
func Register(srv *mcp.Server, provider *hetzner.Provider) []string {
	h := &handler{provider: provider}

	mcp.AddTool(srv, &mcp.Tool{Name: "list_servers", Description: "List all servers in the Hetzner Cloud account."}, h.listServers)
	mcp.AddTool(srv, &mcp.Tool{Name: "get_server", Description: "Get details about a specific server."}, h.getServer)
	mcp.AddTool(srv, &mcp.Tool{Name: "create_server", Description: "Create a new server with the given type, image and location."}, h.createServer)
	mcp.AddTool(srv, &mcp.Tool{Name: "delete_server", Description: "Permanently delete a server."}, h.deleteServer)
	mcp.AddTool(srv, &mcp.Tool{Name: "power_on", Description: "Power on a server."}, h.powerOn)
	mcp.AddTool(srv, &mcp.Tool{Name: "power_off", Description: "Power off a server. Equivalent to pulling the power plug, may cause data loss."}, h.powerOff)
	mcp.AddTool(srv, &mcp.Tool{Name: "reboot", Description: "Soft reboot a server."}, h.reboot)

	mcp.AddTool(srv, &mcp.Tool{Name: "list_images", Description: "List available OS images."}, h.listImages)
	mcp.AddTool(srv, &mcp.Tool{Name: "list_server_types", Description: "List available server types with pricing."}, h.listServerTypes)
	mcp.AddTool(srv, &mcp.Tool{Name: "list_locations", Description: "List available datacenter locations."}, h.listLocations)

	mcp.AddTool(srv, &mcp.Tool{Name: "list_firewalls", Description: "List all firewalls in the Hetzner Cloud account."}, h.listFirewalls)
	mcp.AddTool(srv, &mcp.Tool{Name: "get_firewall", Description: "Get details about a specific firewall."}, h.getFirewall)
	mcp.AddTool(srv, &mcp.Tool{Name: "create_firewall", Description: "Create a new firewall with optional rules and target resources."}, h.createFirewall)
	mcp.AddTool(srv, &mcp.Tool{Name: "update_firewall", Description: "Update the name or labels of a firewall."}, h.updateFirewall)
	mcp.AddTool(srv, &mcp.Tool{Name: "delete_firewall", Description: "Permanently delete a firewall."}, h.deleteFirewall)
	mcp.AddTool(srv, &mcp.Tool{Name: "set_firewall_rules", Description: "Replace all rules of a firewall. An empty rule list removes all rules."}, h.setFirewallRules)
	mcp.AddTool(srv, &mcp.Tool{Name: "apply_firewall_to_resources", Description: "Apply a firewall to servers or label selectors."}, h.applyFirewallToResources)
	mcp.AddTool(srv, &mcp.Tool{Name: "remove_firewall_from_resources", Description: "Remove a firewall from servers or label selectors."}, h.removeFirewallFromResources)

	mcp.AddTool(srv, &mcp.Tool{Name: "list_volumes", Description: "List all volumes in the Hetzner Cloud account."}, h.listVolumes)
	mcp.AddTool(srv, &mcp.Tool{Name: "get_volume", Description: "Get details about a specific volume."}, h.getVolume)
	mcp.AddTool(srv, &mcp.Tool{Name: "create_volume", Description: "Create a new volume, optionally attached to a server."}, h.createVolume)
	mcp.AddTool(srv, &mcp.Tool{Name: "delete_volume", Description: "Permanently delete a volume."}, h.deleteVolume)
	mcp.AddTool(srv, &mcp.Tool{Name: "attach_volume", Description: "Attach a volume to a server."}, h.attachVolume)
	mcp.AddTool(srv, &mcp.Tool{Name: "detach_volume", Description: "Detach a volume from the server it is attached to."}, h.detachVolume)
	mcp.AddTool(srv, &mcp.Tool{Name: "resize_volume", Description: "Grow a volume. The size can only be increased."}, h.resizeVolume)

	mcp.AddTool(srv, &mcp.Tool{Name: "list_ssh_keys", Description: "List all SSH keys in the Hetzner Cloud account."}, h.listSSHKeys)
	mcp.AddTool(srv, &mcp.Tool{Name: "get_ssh_key", Description: "Get details about a specific SSH key."}, h.getSSHKey)
	mcp.AddTool(srv, &mcp.Tool{Name: "create_ssh_key", Description: "Upload a new SSH public key."}, h.createSSHKey)
	mcp.AddTool(srv, &mcp.Tool{Name: "update_ssh_key", Description: "Update the name or labels of an SSH key."}, h.updateSSHKey)
	mcp.AddTool(srv, &mcp.Tool{Name: "delete_ssh_key", Description: "Permanently delete an SSH key."}, h.deleteSSHKey)

	return Names
}

// client returns the API client for the current call, preferring the
// one injected by the token header middleware.
func (h *handler) client(ctx context.Context) (hetzner.Client, error) {
	client, ok := h.provider.FromContext(ctx)
	if !ok {
		return nil, ErrNoToken
	}

	return client, nil
}

// SuccessResult acknowledges an operation with no further payload.
type SuccessResult struct {
	Success bool `json:"success"`
}

// ActionResult acknowledges an operation that started one API action.
type ActionResult struct {
	Success bool                `json:"success"`
	Action  *hetzner.ActionInfo `json:"action,omitempty"`
}

// ActionsResult acknowledges an operation that started several API actions.
type ActionsResult struct {
	Success bool                 `json:"success"`
	Actions []hetzner.ActionInfo `json:"actions,omitempty"`
}

// FirewallRuleParams describes one firewall rule in tool input.
type FirewallRuleParams struct {
	Direction      string   `json:"direction" jsonschema:"Direction of the rule (in or out)"`
	Protocol       string   `json:"protocol" jsonschema:"Protocol (tcp, udp, icmp, esp, or gre)"`
	SourceIPs      []string `json:"source_ips" jsonschema:"List of source IPs in CIDR notation"`
	Port           string   `json:"port,omitempty" jsonschema:"Port or port range (e.g. '80' or '80-85'), only for TCP/UDP"`
	DestinationIPs []string `json:"destination_ips,omitempty" jsonschema:"List of destination IPs in CIDR notation"`
	Description    string   `json:"description,omitempty" jsonschema:"Description of the rule"`
}

// FirewallResourceParams describes a resource a firewall applies to.
type FirewallResourceParams struct {
	Type          string `json:"type" jsonschema:"Type of resource ('server' or 'label_selector')"`
	ServerID      int64  `json:"server_id,omitempty" jsonschema:"Server ID (required when type is 'server')"`
	LabelSelector string `json:"label_selector,omitempty" jsonschema:"Label selector (required when type is 'label_selector')"`
}

// wrapErr prefixes an API failure with the action that caused it,
// naming the API condition when it maps to a known one.
func wrapErr(action string, err error) error {
	switch {
	case hetzner.IsNotFound(err):
		return fmt.Errorf("failed to %s: not found: %w", action, err)
	case hetzner.IsUnauthorized(err):
		return fmt.Errorf("failed to %s: invalid API token: %w", action, err)
	case hetzner.IsRateLimited(err):
		return fmt.Errorf("failed to %s: rate limit exceeded, retry later: %w", action, err)
	case hetzner.IsLocked(err):
		return fmt.Errorf("failed to %s: resource is locked by a running action: %w", action, err)
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}

func parseCIDRs(cidrs []string) ([]net.IPNet, error) {
	nets := make([]net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
		}

		nets = append(nets, *ipNet)
	}

	return nets, nil
}

func buildRules(params []FirewallRuleParams) ([]hcloud.FirewallRule, error) {
	rules := make([]hcloud.FirewallRule, 0, len(params))

	for _, param := range params {
		sourceIPs, err := parseCIDRs(param.SourceIPs)
		if err != nil {
			return nil, err
		}

		destinationIPs, err := parseCIDRs(param.DestinationIPs)
		if err != nil {
			return nil, err
		}

		rule := hcloud.FirewallRule{
			Direction:      hcloud.FirewallRuleDirection(param.Direction),
			Protocol:       hcloud.FirewallRuleProtocol(param.Protocol),
			SourceIPs:      sourceIPs,
			DestinationIPs: destinationIPs,
		}

		if param.Port != "" {
			rule.Port = hcloud.Ptr(param.Port)
		}

		if param.Description != "" {
			rule.Description = hcloud.Ptr(param.Description)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

// buildResources validates and converts firewall resource parameters.
// Server resources are checked for existence so errors surface before
// the API call changes anything.
func buildResources(ctx context.Context, client hetzner.Client, params []FirewallResourceParams) ([]hcloud.FirewallResource, error) {
	resources := make([]hcloud.FirewallResource, 0, len(params))

	for _, param := range params {
		switch param.Type {
		case string(hcloud.FirewallResourceTypeServer):
			if param.ServerID == 0 {
				return nil, errors.New("server ID is required when resource type is 'server'")
			}

			server, err := client.GetServerByID(ctx, param.ServerID)
			if err != nil {
				return nil, wrapErr(fmt.Sprintf("look up server %d", param.ServerID), err)
			}

			if server == nil {
				return nil, fmt.Errorf("server with ID %d not found", param.ServerID)
			}

			resources = append(resources, hcloud.FirewallResource{
				Type:   hcloud.FirewallResourceTypeServer,
				Server: &hcloud.FirewallResourceServer{ID: server.ID},
			})
		case string(hcloud.FirewallResourceTypeLabelSelector):
			if param.LabelSelector == "" {
				return nil, errors.New("label selector is required when resource type is 'label_selector'")
			}

			resources = append(resources, hcloud.FirewallResource{
				Type:          hcloud.FirewallResourceTypeLabelSelector,
				LabelSelector: &hcloud.FirewallResourceLabelSelector{Selector: param.LabelSelector},
			})
		default:
			return nil, fmt.Errorf("invalid resource type: %s, must be 'server' or 'label_selector'", param.Type)
		}
	}

	return resources, nil
}
