// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package hetzner

import (
	"errors"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// IsNotFound reports whether err is the API's not found error.
func IsNotFound(err error) bool {
	var apiErr hcloud.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == hcloud.ErrorCodeNotFound
	}

	return false
}

// IsRateLimited reports whether err signals the API rate limit was hit.
func IsRateLimited(err error) bool {
	var apiErr hcloud.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == hcloud.ErrorCodeRateLimitExceeded
	}

	return false
}

// IsLocked reports whether err means the resource is locked by a
// running action and the request should be retried later.
func IsLocked(err error) bool {
	var apiErr hcloud.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == hcloud.ErrorCodeLocked || apiErr.Code == hcloud.ErrorCodeConflict
	}

	return false
}

// IsUnauthorized reports whether err means the API token was rejected.
func IsUnauthorized(err error) bool {
	var apiErr hcloud.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == hcloud.ErrorCodeUnauthorized
	}

	return false
}
