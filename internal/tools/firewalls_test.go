// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package tools_test

import (
	"context"
	"net"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFirewall() *hcloud.Firewall {
	_, anyV4, _ := net.ParseCIDR("0.0.0.0/0")

	return &hcloud.Firewall{
		ID:   9,
		Name: "web-fw",
		Rules: []hcloud.FirewallRule{
			{
				Direction: hcloud.FirewallRuleDirectionIn,
				Protocol:  hcloud.FirewallRuleProtocolTCP,
				SourceIPs: []net.IPNet{*anyV4},
				Port:      hcloud.Ptr("80"),
			},
		},
	}
}

func TestListFirewalls(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		allFirewalls: func(_ context.Context) ([]*hcloud.Firewall, error) {
			return []*hcloud.Firewall{testFirewall()}, nil
		},
	}

	session := newSession(t, client)
	result := callTool(t, session, "list_firewalls", nil)

	firewalls, ok := result["firewalls"].([]any)
	require.True(t, ok)
	require.Len(t, firewalls, 1)

	fw, ok := firewalls[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "web-fw", fw["name"])

	rules, ok := fw["rules"].([]any)
	require.True(t, ok)
	require.Len(t, rules, 1)

	rule, ok := rules[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "in", rule["direction"])
	assert.Equal(t, "tcp", rule["protocol"])
	assert.Equal(t, "80", rule["port"])
}

func TestGetFirewallNotFound(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		getFirewallByID: func(_ context.Context, _ int64) (*hcloud.Firewall, error) {
			return nil, nil
		},
	}

	session := newSession(t, client)
	errText := callToolExpectError(t, session, "get_firewall", map[string]any{"firewall_id": 9})
	assert.Contains(t, errText, "firewall with ID 9 not found")
}

func TestCreateFirewall(t *testing.T) {
	t.Parallel()

	var gotOpts hcloud.FirewallCreateOpts

	client := &fakeClient{
		getServerByID: func(_ context.Context, id int64) (*hcloud.Server, error) {
			return &hcloud.Server{ID: id, Name: "web-1"}, nil
		},
		createFirewall: func(_ context.Context, opts hcloud.FirewallCreateOpts) (hcloud.FirewallCreateResult, error) {
			gotOpts = opts

			return hcloud.FirewallCreateResult{
				Firewall: testFirewall(),
				Actions:  []*hcloud.Action{{ID: 3, Status: hcloud.ActionStatusRunning, Command: "apply_firewall"}},
			}, nil
		},
	}

	session := newSession(t, client)

	result := callTool(t, session, "create_firewall", map[string]any{
		"name": "web-fw",
		"rules": []map[string]any{
			{
				"direction":  "in",
				"protocol":   "tcp",
				"source_ips": []string{"0.0.0.0/0", "::/0"},
				"port":       "80",
			},
		},
		"resources": []map[string]any{
			{"type": "server", "server_id": 1},
			{"type": "label_selector", "label_selector": "env=prod"},
		},
	})

	fw, ok := result["firewall"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "web-fw", fw["name"])

	actions, ok := result["actions"].([]any)
	require.True(t, ok)
	assert.Len(t, actions, 1)

	require.Len(t, gotOpts.Rules, 1)
	assert.Len(t, gotOpts.Rules[0].SourceIPs, 2)
	require.Len(t, gotOpts.ApplyTo, 2)
	assert.Equal(t, hcloud.FirewallResourceTypeServer, gotOpts.ApplyTo[0].Type)
	assert.Equal(t, hcloud.FirewallResourceTypeLabelSelector, gotOpts.ApplyTo[1].Type)
}

func TestCreateFirewallValidation(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		getServerByID: func(_ context.Context, _ int64) (*hcloud.Server, error) {
			return nil, nil
		},
	}

	tests := []struct {
		name     string
		args     map[string]any
		expected string
	}{
		{
			name: "invalid CIDR",
			args: map[string]any{
				"name": "fw",
				"rules": []map[string]any{
					{"direction": "in", "protocol": "tcp", "source_ips": []string{"not-a-cidr"}},
				},
			},
			expected: "invalid CIDR",
		},
		{
			name: "server resource without ID",
			args: map[string]any{
				"name":      "fw",
				"resources": []map[string]any{{"type": "server"}},
			},
			expected: "server ID is required",
		},
		{
			name: "label selector resource without selector",
			args: map[string]any{
				"name":      "fw",
				"resources": []map[string]any{{"type": "label_selector"}},
			},
			expected: "label selector is required",
		},
		{
			name: "unknown resource type",
			args: map[string]any{
				"name":      "fw",
				"resources": []map[string]any{{"type": "network"}},
			},
			expected: "invalid resource type: network",
		},
		{
			name: "server resource not found",
			args: map[string]any{
				"name":      "fw",
				"resources": []map[string]any{{"type": "server", "server_id": 77}},
			},
			expected: "server with ID 77 not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := newSession(t, client)
			errText := callToolExpectError(t, session, "create_firewall", tt.args)
			assert.Contains(t, errText, tt.expected)
		})
	}
}

func TestUpdateFirewall(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		getFirewallByID: func(_ context.Context, id int64) (*hcloud.Firewall, error) {
			return &hcloud.Firewall{ID: id, Name: "old-name"}, nil
		},
		updateFirewall: func(_ context.Context, fw *hcloud.Firewall, opts hcloud.FirewallUpdateOpts) (*hcloud.Firewall, error) {
			return &hcloud.Firewall{ID: fw.ID, Name: opts.Name, Labels: opts.Labels}, nil
		},
	}

	session := newSession(t, client)

	result := callTool(t, session, "update_firewall", map[string]any{
		"firewall_id": 9,
		"name":        "new-name",
	})

	fw, ok := result["firewall"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "new-name", fw["name"])
}

func TestSetFirewallRules(t *testing.T) {
	t.Parallel()

	var gotRules []hcloud.FirewallRule

	client := &fakeClient{
		getFirewallByID: func(_ context.Context, id int64) (*hcloud.Firewall, error) {
			return &hcloud.Firewall{ID: id, Name: "web-fw"}, nil
		},
		setRules: func(_ context.Context, _ *hcloud.Firewall, opts hcloud.FirewallSetRulesOpts) ([]*hcloud.Action, error) {
			gotRules = opts.Rules

			return []*hcloud.Action{{ID: 4, Status: hcloud.ActionStatusRunning, Command: "set_firewall_rules"}}, nil
		},
	}

	session := newSession(t, client)

	result := callTool(t, session, "set_firewall_rules", map[string]any{
		"firewall_id": 9,
		"rules": []map[string]any{
			{"direction": "in", "protocol": "tcp", "source_ips": []string{"10.0.0.0/8"}, "port": "22"},
		},
	})

	assert.Equal(t, true, result["success"])
	require.Len(t, gotRules, 1)
	assert.Equal(t, "10.0.0.0/8", gotRules[0].SourceIPs[0].String())

	// Clearing all rules is allowed.
	result = callTool(t, session, "set_firewall_rules", map[string]any{
		"firewall_id": 9,
		"rules":       []map[string]any{},
	})

	assert.Equal(t, true, result["success"])
	assert.Empty(t, gotRules)
}

func TestApplyAndRemoveFirewallResources(t *testing.T) {
	t.Parallel()

	newClient := func() *fakeClient {
		actions := []*hcloud.Action{{ID: 6, Status: hcloud.ActionStatusRunning, Command: "apply_firewall"}}

		return &fakeClient{
			getFirewallByID: func(_ context.Context, id int64) (*hcloud.Firewall, error) {
				return &hcloud.Firewall{ID: id, Name: "web-fw"}, nil
			},
			getServerByID: func(_ context.Context, id int64) (*hcloud.Server, error) {
				return &hcloud.Server{ID: id}, nil
			},
			applyResources: func(_ context.Context, _ *hcloud.Firewall, _ []hcloud.FirewallResource) ([]*hcloud.Action, error) {
				return actions, nil
			},
			removeResources: func(_ context.Context, _ *hcloud.Firewall, _ []hcloud.FirewallResource) ([]*hcloud.Action, error) {
				return actions, nil
			},
		}
	}

	for _, tool := range []string{"apply_firewall_to_resources", "remove_firewall_from_resources"} {
		t.Run(tool, func(t *testing.T) {
			t.Parallel()

			session := newSession(t, newClient())

			result := callTool(t, session, tool, map[string]any{
				"firewall_id": 9,
				"resources":   []map[string]any{{"type": "server", "server_id": 1}},
			})

			assert.Equal(t, true, result["success"])

			actions, ok := result["actions"].([]any)
			require.True(t, ok)
			assert.Len(t, actions, 1)
		})
	}
}

func TestDeleteFirewall(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		getFirewallByID: func(_ context.Context, id int64) (*hcloud.Firewall, error) {
			return &hcloud.Firewall{ID: id, Name: "web-fw"}, nil
		},
		deleteFirewall: func(_ context.Context, _ *hcloud.Firewall) error {
			return nil
		},
	}

	session := newSession(t, client)

	result := callTool(t, session, "delete_firewall", map[string]any{"firewall_id": 9})
	assert.Equal(t, true, result["success"])
}
