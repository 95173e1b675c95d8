package domain

import (
	"context"
	"errors"
	"strconv"
)

// =============================================================================
// Slug Generation
// =============================================================================

// MaxSlugAttempts bounds the number of suffixed candidates UniqueSlug probes
// before giving up. The original recursion had no bound.
const MaxSlugAttempts = 1000

// ErrSlugExhausted is returned when every candidate up to MaxSlugAttempts is
// already taken.
var ErrSlugExhausted = errors.New("slug namespace exhausted")

// MakeSlug derives a slug base from a display name by stripping every
// character that is not an ASCII letter or digit. Case is preserved.
//
// Example:
//
//	MakeSlug("Tech & Science")  // returns "TechScience"
//	MakeSlug("My App 2.0!")     // returns "MyApp20"
//
// This is a pure function with no side effects.
func MakeSlug(name string) string {
	slug := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			slug = append(slug, c)
		}
	}
	return string(slug)
}

// SlugTaken reports whether a candidate slug is already in use. It is
// supplied by the caller and typically closes over a tenant-scoped
// by-slug lookup against the store. It must perform no writes.
type SlugTaken func(ctx context.Context, slug string) (bool, error)

// UniqueSlug returns the first free candidate derived from base: base itself,
// then base1, base2, ... with strictly increasing suffixes. The probe is
// read-only; callers that need a hard guarantee rely on the store's unique
// (client_id, slug) constraint to reject the losing side of a race.
func UniqueSlug(ctx context.Context, base string, taken SlugTaken) (string, error) {
	candidate := base
	for attempt := 1; attempt <= MaxSlugAttempts; attempt++ {
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(attempt)
	}
	return "", ErrSlugExhausted
}
