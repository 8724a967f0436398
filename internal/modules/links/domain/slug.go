package domain

import (
	"net/url"
	"strings"
)

// EncodeSlug joins the escaped display name and the short id with a single hyphen.
func EncodeSlug(displayName, shortID string) string {
	return url.PathEscape(displayName) + "-" + shortID
}

// DecodeSlug splits an escaped path segment on its last hyphen.
// Only the name part is unescaped; the id is returned as is.
//
// A name that ends in hyphen-digit text is indistinguishable from part of the
// id, so such names do not round-trip.
func DecodeSlug(segment string) (displayName, shortID string, err error) {
	i := strings.LastIndexByte(segment, '-')
	if i <= 0 || i == len(segment)-1 {
		return "", "", ErrMalformedSlug
	}

	name, err := url.PathUnescape(segment[:i])
	if err != nil || name == "" {
		return "", "", ErrMalformedSlug
	}
	return name, segment[i+1:], nil
}
