// Package authz checks a caller's granted permission strings against a
// required operation, with wildcard support.
//
// Permission Format:
//   - "*" - Full access (all operations)
//   - "resource.*" - All actions on a resource (e.g., "batch.*")
//   - "resource.action" - Specific action (e.g., "batch.receive")
package authz

import (
	"strings"
)

// Allowed reports whether granted includes the required operation, directly
// or via a wildcard.
//   - "*" matches everything
//   - "batch.*" matches "batch.receive", "batch.dispatch", etc.
//   - exact match for specific operations
func Allowed(granted []string, required string) bool {
	if required == "" {
		return true
	}

	for _, p := range granted {
		if p == "*" {
			return true
		}
		if p == required {
			return true
		}
		if strings.HasSuffix(p, ".*") {
			prefix := strings.TrimSuffix(p, ".*")
			if strings.HasPrefix(required, prefix+".") {
				return true
			}
		}
	}
	return false
}

// AllowedAny reports whether granted covers any of the required operations.
func AllowedAny(granted []string, required []string) bool {
	for _, req := range required {
		if Allowed(granted, req) {
			return true
		}
	}
	return false
}

// AllowedAll reports whether granted covers every required operation.
func AllowedAll(granted []string, required []string) bool {
	for _, req := range required {
		if !Allowed(granted, req) {
			return false
		}
	}
	return true
}

// FilterByPrefix returns the subset of perms under a given resource prefix.
func FilterByPrefix(perms []string, prefix string) []string {
	var matches []string
	for _, p := range perms {
		if strings.HasPrefix(p, prefix+".") || p == prefix {
			matches = append(matches, p)
		}
	}
	return matches
}

// Merge combines multiple permission sets, removing duplicates.
func Merge(sets ...[]string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, set := range sets {
		for _, p := range set {
			if !seen[p] {
				seen[p] = true
				result = append(result, p)
			}
		}
	}

	return result
}

// Operations enumerates the warehouse operations that authz.Allowed checks
// against. Role-to-operation assignment lives with the caller; this package
// only matches strings.
var Operations = []string{
	"batch.receive",
	"batch.dispatch",
	"batch.adjust",
	"batch.scrap",
	"batch.*",

	"deliverynote.create",
	"deliverynote.issue",
	"deliverynote.cancel",
	"deliverynote.*",

	"alerts.read",
	"alerts.acknowledge",
	"alerts.run",
	"alerts.*",

	"item.read",
	"item.write",
	"item.*",

	"*",
}

// IsKnownOperation reports whether op is one of the enumerated Operations,
// or follows the resource.action / resource.* shape.
func IsKnownOperation(op string) bool {
	if op == "*" {
		return true
	}
	for _, o := range Operations {
		if o == op {
			return true
		}
	}
	parts := strings.Split(op, ".")
	return len(parts) >= 2
}
