// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mediaurl turns stored media references into canonical public URLs.

Rows written over the years carry references in several shapes:
"uploads/a.jpg", "/uploads/a.jpg", "public\uploads\a.jpg", "a.jpg" or an
absolute "https://..." link. [Normalizer] maps all of them onto a single
public form: {base}/{subdir}/{file}.

Every function here is pure. Nothing touches the filesystem and nothing
returns an error; malformed input degrades to a best-effort URL.
*/
package mediaurl

import (
	"path"
	"strings"
)

// DefaultSubdir is the canonical storage subdirectory for uploaded media.
const DefaultSubdir = "uploads"

// legacyRoots are storage roots that older rows may carry before the subdir.
var legacyRoots = []string{"public/", "static/"}

// Normalizer builds public media URLs against a configured origin.
type Normalizer struct {
	baseURL string
	subdir  string
}

// New creates a [Normalizer].
//
// baseURL is the public origin (e.g. "https://cdn.example.com"); a trailing
// slash is ignored. An empty subdir falls back to [DefaultSubdir].
func New(baseURL, subdir string) *Normalizer {
	subdir = strings.Trim(strings.ReplaceAll(subdir, `\`, "/"), "/")
	if subdir == "" {
		subdir = DefaultSubdir
	}
	return &Normalizer{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		subdir:  subdir,
	}
}

// Subdir returns the canonical storage subdirectory.
func (n *Normalizer) Subdir() string { return n.subdir }

// Public converts a raw stored reference into its canonical public URL.
//
// An empty reference yields "". Absolute http(s) URLs and values already in
// canonical form are returned unchanged, so Public is idempotent.
func (n *Normalizer) Public(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	if isAbsolute(value) {
		return value
	}

	prefix := n.prefix()
	if strings.HasPrefix(value, prefix) {
		return value
	}

	relative := n.relative(value)
	if relative == "" {
		return ""
	}
	return prefix + relative
}

// PublicPtr is [Normalizer.Public] for nullable columns.
func (n *Normalizer) PublicPtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	url := n.Public(*raw)
	if url == "" {
		return nil
	}
	return &url
}

// PublicAll normalizes every reference, dropping empty ones.
func (n *Normalizer) PublicAll(raws []string) []string {
	urls := make([]string, 0, len(raws))
	for _, raw := range raws {
		if url := n.Public(raw); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

// Reference builds the canonical stored reference for a bare filename.
func (n *Normalizer) Reference(filename string) string {
	return n.subdir + "/" + filename
}

// Filename extracts the stored name from any historical reference form,
// including a full public URL served by this origin.
//
// The name is the slash-separated path below the subdir: "a.jpg" for flat
// uploads, "gallery/a.jpg" for legacy nested ones. It returns "" when the
// reference is empty, points to a foreign absolute URL, names a directory,
// or tries to escape the storage directory.
func (n *Normalizer) Filename(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	if strings.HasPrefix(value, n.prefix()) {
		value = strings.TrimPrefix(value, n.prefix())
	} else if isAbsolute(value) {
		return ""
	}

	relative := n.relative(value)
	if relative == "" || strings.HasSuffix(relative, "/") {
		return ""
	}
	for _, segment := range strings.Split(relative, "/") {
		if segment == ".." {
			return ""
		}
	}

	name := path.Clean(relative)
	if name == "." {
		return ""
	}
	return name
}

// prefix is the canonical URL prefix every normalized reference starts with.
func (n *Normalizer) prefix() string {
	return n.baseURL + "/" + n.subdir + "/"
}

// relative reduces a raw reference to the path below the storage subdir.
func (n *Normalizer) relative(value string) string {
	value = strings.ReplaceAll(value, `\`, "/")
	for strings.Contains(value, "//") {
		value = strings.ReplaceAll(value, "//", "/")
	}

	value = trimLeading(value)
	for _, root := range legacyRoots {
		if hasPrefixFold(value, root) {
			value = trimLeading(value[len(root):])
		}
	}
	if hasPrefixFold(value, n.subdir+"/") {
		value = trimLeading(value[len(n.subdir)+1:])
	}

	return value
}

// trimLeading drops any run of "./" and "/" at the start of value.
func trimLeading(value string) string {
	for {
		switch {
		case strings.HasPrefix(value, "./"):
			value = value[2:]
		case strings.HasPrefix(value, "/"):
			value = value[1:]
		default:
			return value
		}
	}
}

func isAbsolute(value string) bool {
	return hasPrefixFold(value, "http://") || hasPrefixFold(value, "https://")
}

func hasPrefixFold(value, prefix string) bool {
	return len(value) >= len(prefix) && strings.EqualFold(value[:len(prefix)], prefix)
}
