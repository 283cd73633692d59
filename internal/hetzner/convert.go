// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package hetzner

import (
	"net"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ActionInfo describes a running or finished API action.
type ActionInfo struct {
	ID       int64  `json:"id"`
	Status   string `json:"status"`
	Command  string `json:"command"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
	Started  string `json:"started,omitempty"`
	Finished string `json:"finished,omitempty"`
}

// PublicNetInfo holds the primary public addresses of a server.
type PublicNetInfo struct {
	IPv4 string `json:"ipv4,omitempty"`
	IPv6 string `json:"ipv6,omitempty"`
}

// ServerProtectionInfo mirrors the server protection flags.
type ServerProtectionInfo struct {
	Delete  bool `json:"delete"`
	Rebuild bool `json:"rebuild"`
}

// ServerInfo is the tool-facing representation of a server.
type ServerInfo struct {
	ID              int64                `json:"id"`
	Name            string               `json:"name"`
	Status          string               `json:"status"`
	Created         string               `json:"created,omitempty"`
	ServerType      string               `json:"server_type,omitempty"`
	Image           string               `json:"image,omitempty"`
	Datacenter      string               `json:"datacenter,omitempty"`
	Location        string               `json:"location,omitempty"`
	PublicNet       PublicNetInfo        `json:"public_net"`
	IncludedTraffic uint64               `json:"included_traffic"`
	OutgoingTraffic uint64               `json:"outgoing_traffic"`
	IngoingTraffic  uint64               `json:"ingoing_traffic"`
	BackupWindow    string               `json:"backup_window,omitempty"`
	RescueEnabled   bool                 `json:"rescue_enabled"`
	Locked          bool                 `json:"locked"`
	Protection      ServerProtectionInfo `json:"protection"`
	Labels          map[string]string    `json:"labels"`
	Volumes         []int64              `json:"volumes"`
}

// VolumeProtectionInfo mirrors the volume protection flags.
type VolumeProtectionInfo struct {
	Delete bool `json:"delete"`
}

// VolumeInfo is the tool-facing representation of a volume.
type VolumeInfo struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Size        int                  `json:"size"`
	Location    string               `json:"location,omitempty"`
	Server      *int64               `json:"server,omitempty"`
	LinuxDevice string               `json:"linux_device,omitempty"`
	Protection  VolumeProtectionInfo `json:"protection"`
	Labels      map[string]string    `json:"labels"`
	Format      string               `json:"format,omitempty"`
	Created     string               `json:"created,omitempty"`
	Status      string               `json:"status"`
}

// SSHKeyInfo is the tool-facing representation of an SSH key.
type SSHKeyInfo struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Fingerprint string            `json:"fingerprint"`
	PublicKey   string            `json:"public_key"`
	Labels      map[string]string `json:"labels"`
	Created     string            `json:"created,omitempty"`
}

// FirewallRuleInfo describes a single firewall rule.
type FirewallRuleInfo struct {
	Direction      string   `json:"direction"`
	Protocol       string   `json:"protocol"`
	SourceIPs      []string `json:"source_ips"`
	DestinationIPs []string `json:"destination_ips,omitempty"`
	Port           string   `json:"port,omitempty"`
	Description    string   `json:"description,omitempty"`
}

// FirewallResourceInfo describes a resource a firewall is applied to.
type FirewallResourceInfo struct {
	Type          string `json:"type"`
	Server        *int64 `json:"server,omitempty"`
	LabelSelector string `json:"label_selector,omitempty"`
}

// FirewallInfo is the tool-facing representation of a firewall.
type FirewallInfo struct {
	ID        int64                  `json:"id"`
	Name      string                 `json:"name"`
	Rules     []FirewallRuleInfo     `json:"rules"`
	AppliedTo []FirewallResourceInfo `json:"applied_to"`
	Labels    map[string]string      `json:"labels"`
	Created   string                 `json:"created,omitempty"`
}

// ImageInfo is the tool-facing representation of an OS image.
type ImageInfo struct {
	ID           int64  `json:"id"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	OSFlavor     string `json:"os_flavor,omitempty"`
	OSVersion    string `json:"os_version,omitempty"`
	Architecture string `json:"architecture"`
	SizeGB       int    `json:"size_gb"`
	Created      string `json:"created,omitempty"`
}

// PriceInfo is the pricing of a server type at one location.
type PriceInfo struct {
	PriceHourly  string `json:"price_hourly"`
	PriceMonthly string `json:"price_monthly"`
	Location     string `json:"location,omitempty"`
}

// ServerTypeInfo is the tool-facing representation of a server type.
type ServerTypeInfo struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Cores       int         `json:"cores"`
	MemoryGB    float32     `json:"memory_gb"`
	DiskGB      int         `json:"disk_gb"`
	StorageType string      `json:"storage_type"`
	CPUType     string      `json:"cpu_type"`
	Prices      []PriceInfo `json:"prices"`
}

// LocationInfo is the tool-facing representation of a location.
type LocationInfo struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Country     string  `json:"country"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	NetworkZone string  `json:"network_zone"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.RFC3339)
}

// ConvertAction maps an SDK action to its wire form. A nil action yields nil.
func ConvertAction(action *hcloud.Action) *ActionInfo {
	if action == nil {
		return nil
	}

	info := &ActionInfo{
		ID:       action.ID,
		Status:   string(action.Status),
		Command:  action.Command,
		Progress: action.Progress,
		Started:  formatTime(action.Started),
		Finished: formatTime(action.Finished),
	}

	if action.ErrorMessage != "" {
		info.Error = action.ErrorMessage
	}

	return info
}

// ConvertActions maps a slice of SDK actions, skipping nil entries.
func ConvertActions(actions []*hcloud.Action) []ActionInfo {
	infos := make([]ActionInfo, 0, len(actions))
	for _, action := range actions {
		if info := ConvertAction(action); info != nil {
			infos = append(infos, *info)
		}
	}

	return infos
}

// ConvertServer maps an SDK server to its wire form.
func ConvertServer(server *hcloud.Server) ServerInfo {
	info := ServerInfo{
		ID:              server.ID,
		Name:            server.Name,
		Status:          string(server.Status),
		Created:         formatTime(server.Created),
		IncludedTraffic: server.IncludedTraffic,
		OutgoingTraffic: server.OutgoingTraffic,
		IngoingTraffic:  server.IngoingTraffic,
		BackupWindow:    server.BackupWindow,
		RescueEnabled:   server.RescueEnabled,
		Locked:          server.Locked,
		Protection: ServerProtectionInfo{
			Delete:  server.Protection.Delete,
			Rebuild: server.Protection.Rebuild,
		},
		Labels:  server.Labels,
		Volumes: []int64{},
	}

	if server.ServerType != nil {
		info.ServerType = server.ServerType.Name
	}

	if server.Image != nil {
		info.Image = server.Image.Name
	}

	if server.Datacenter != nil {
		info.Datacenter = server.Datacenter.Name
		if server.Datacenter.Location != nil {
			info.Location = server.Datacenter.Location.Name
		}
	}

	if ip := server.PublicNet.IPv4.IP; ip != nil {
		info.PublicNet.IPv4 = ip.String()
	}

	if ip := server.PublicNet.IPv6.IP; ip != nil {
		info.PublicNet.IPv6 = ip.String()
	}

	for _, volume := range server.Volumes {
		if volume != nil {
			info.Volumes = append(info.Volumes, volume.ID)
		}
	}

	return info
}

// ConvertVolume maps an SDK volume to its wire form.
func ConvertVolume(volume *hcloud.Volume) VolumeInfo {
	info := VolumeInfo{
		ID:          volume.ID,
		Name:        volume.Name,
		Size:        volume.Size,
		LinuxDevice: volume.LinuxDevice,
		Protection: VolumeProtectionInfo{
			Delete: volume.Protection.Delete,
		},
		Labels:  volume.Labels,
		Created: formatTime(volume.Created),
		Status:  string(volume.Status),
	}

	if volume.Location != nil {
		info.Location = volume.Location.Name
	}

	if volume.Server != nil {
		info.Server = hcloud.Ptr(volume.Server.ID)
	}

	if volume.Format != nil {
		info.Format = *volume.Format
	}

	return info
}

// ConvertSSHKey maps an SDK SSH key to its wire form.
func ConvertSSHKey(key *hcloud.SSHKey) SSHKeyInfo {
	return SSHKeyInfo{
		ID:          key.ID,
		Name:        key.Name,
		Fingerprint: key.Fingerprint,
		PublicKey:   key.PublicKey,
		Labels:      key.Labels,
		Created:     formatTime(key.Created),
	}
}

func formatIPNets(nets []net.IPNet) []string {
	cidrs := make([]string, 0, len(nets))
	for _, n := range nets {
		cidrs = append(cidrs, n.String())
	}

	return cidrs
}

// ConvertFirewall maps an SDK firewall to its wire form.
func ConvertFirewall(fw *hcloud.Firewall) FirewallInfo {
	info := FirewallInfo{
		ID:        fw.ID,
		Name:      fw.Name,
		Rules:     make([]FirewallRuleInfo, 0, len(fw.Rules)),
		AppliedTo: make([]FirewallResourceInfo, 0, len(fw.AppliedTo)),
		Labels:    fw.Labels,
		Created:   formatTime(fw.Created),
	}

	for _, rule := range fw.Rules {
		ruleInfo := FirewallRuleInfo{
			Direction: string(rule.Direction),
			Protocol:  string(rule.Protocol),
			SourceIPs: formatIPNets(rule.SourceIPs),
		}

		if len(rule.DestinationIPs) > 0 {
			ruleInfo.DestinationIPs = formatIPNets(rule.DestinationIPs)
		}

		if rule.Port != nil {
			ruleInfo.Port = *rule.Port
		}

		if rule.Description != nil {
			ruleInfo.Description = *rule.Description
		}

		info.Rules = append(info.Rules, ruleInfo)
	}

	for _, resource := range fw.AppliedTo {
		resourceInfo := FirewallResourceInfo{
			Type: string(resource.Type),
		}

		if resource.Server != nil {
			resourceInfo.Server = hcloud.Ptr(resource.Server.ID)
		}

		if resource.LabelSelector != nil {
			resourceInfo.LabelSelector = resource.LabelSelector.Selector
		}

		info.AppliedTo = append(info.AppliedTo, resourceInfo)
	}

	return info
}

// ConvertImage maps an SDK image to its wire form.
func ConvertImage(image *hcloud.Image) ImageInfo {
	return ImageInfo{
		ID:           image.ID,
		Name:         image.Name,
		Description:  image.Description,
		Type:         string(image.Type),
		Status:       string(image.Status),
		OSFlavor:     image.OSFlavor,
		OSVersion:    image.OSVersion,
		Architecture: string(image.Architecture),
		SizeGB:       int(image.DiskSize),
		Created:      formatTime(image.Created),
	}
}

// ConvertServerType maps an SDK server type to its wire form,
// including per location pricing.
func ConvertServerType(serverType *hcloud.ServerType) ServerTypeInfo {
	info := ServerTypeInfo{
		ID:          serverType.ID,
		Name:        serverType.Name,
		Description: serverType.Description,
		Cores:       serverType.Cores,
		MemoryGB:    serverType.Memory,
		DiskGB:      serverType.Disk,
		StorageType: string(serverType.StorageType),
		CPUType:     string(serverType.CPUType),
		Prices:      make([]PriceInfo, 0, len(serverType.Pricings)),
	}

	for _, pricing := range serverType.Pricings {
		price := PriceInfo{
			PriceHourly:  pricing.Hourly.Gross,
			PriceMonthly: pricing.Monthly.Gross,
		}

		if pricing.Location != nil {
			price.Location = pricing.Location.Name
		}

		info.Prices = append(info.Prices, price)
	}

	return info
}

// ConvertLocation maps an SDK location to its wire form.
func ConvertLocation(location *hcloud.Location) LocationInfo {
	return LocationInfo{
		ID:          location.ID,
		Name:        location.Name,
		Description: location.Description,
		Country:     location.Country,
		City:        location.City,
		Latitude:    location.Latitude,
		Longitude:   location.Longitude,
		NetworkZone: string(location.NetworkZone),
	}
}
