// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcp-hetzner/mcp-hetzner/internal/hetzner"
)

// ListImagesParams has no fields, list_images takes no arguments.
type ListImagesParams struct{}

// ListServerTypesParams has no fields, list_server_types takes no arguments.
type ListServerTypesParams struct{}

// ListLocationsParams has no fields, list_locations takes no arguments.
type ListLocationsParams struct{}

// ImagesResult wraps the image list.
type ImagesResult struct {
	Images []hetzner.ImageInfo `json:"images"`
}

// ServerTypesResult wraps the server type list.
type ServerTypesResult struct {
	ServerTypes []hetzner.ServerTypeInfo `json:"server_types"`
}

// LocationsResult wraps the location list.
type LocationsResult struct {
	Locations []hetzner.LocationInfo `json:"locations"`
}

func (h *handler) listImages(ctx context.Context, _ *mcp.CallToolRequest, _ ListImagesParams) (*mcp.CallToolResult, ImagesResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ImagesResult{}, err
	}

	images, err := client.AllImages(ctx)
	if err != nil {
		return nil, ImagesResult{}, wrapErr("list images", err)
	}

	result := ImagesResult{Images: make([]hetzner.ImageInfo, 0, len(images))}
	for _, image := range images {
		result.Images = append(result.Images, hetzner.ConvertImage(image))
	}

	return nil, result, nil
}

func (h *handler) listServerTypes(ctx context.Context, _ *mcp.CallToolRequest, _ ListServerTypesParams) (*mcp.CallToolResult, ServerTypesResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, ServerTypesResult{}, err
	}

	serverTypes, err := client.AllServerTypes(ctx)
	if err != nil {
		return nil, ServerTypesResult{}, wrapErr("list server types", err)
	}

	result := ServerTypesResult{ServerTypes: make([]hetzner.ServerTypeInfo, 0, len(serverTypes))}
	for _, serverType := range serverTypes {
		result.ServerTypes = append(result.ServerTypes, hetzner.ConvertServerType(serverType))
	}

	return nil, result, nil
}

func (h *handler) listLocations(ctx context.Context, _ *mcp.CallToolRequest, _ ListLocationsParams) (*mcp.CallToolResult, LocationsResult, error) {
	client, err := h.client(ctx)
	if err != nil {
		return nil, LocationsResult{}, err
	}

	locations, err := client.AllLocations(ctx)
	if err != nil {
		return nil, LocationsResult{}, wrapErr("list locations", err)
	}

	result := LocationsResult{Locations: make([]hetzner.LocationInfo, 0, len(locations))}
	for _, location := range locations {
		result.Locations = append(result.Locations, hetzner.ConvertLocation(location))
	}

	return nil, result, nil
}
