// Package navigation maps lists to and from their /form/{id} locations.
package navigation

import (
	"net/url"
	"strings"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/schema"
)

// FormPrefix is the path segment that precedes a list id.
const FormPrefix = "/form/"

// CleanBasePath reduces a configured mount point to "/a/b" form, or "" for
// the root.
func CleanBasePath(basePath string) string {
	trimmed := strings.Trim(strings.TrimSpace(basePath), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

// BaseHref is the <base href> for pages served under basePath, absolute
// when baseURL is set. It is "" when neither is configured.
func BaseHref(baseURL, basePath string) string {
	href := strings.TrimRight(strings.TrimSpace(baseURL), "/") + CleanBasePath(basePath)
	if href == "" {
		return ""
	}
	return href + "/"
}

// Path returns the location of a list under basePath.
func Path(basePath string, id schema.TabID) string {
	return CleanBasePath(basePath) + FormPrefix + url.PathEscape(string(id))
}

// TabIDFromPath extracts the list id from a location. ok is false when the
// path is not a form location.
func TabIDFromPath(basePath, path string) (schema.TabID, bool) {
	if base := CleanBasePath(basePath); base != "" {
		if !strings.HasPrefix(path, base) {
			return "", false
		}
		path = strings.TrimPrefix(path, base)
	}
	if !strings.HasPrefix(path, FormPrefix) {
		return "", false
	}
	raw := strings.TrimPrefix(path, FormPrefix)
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	id := schema.NormalizeTabID(raw)
	if id == "" || strings.Contains(string(id), "/") {
		return "", false
	}
	return id, true
}

// Resolution is the outcome of resolving a requested location.
type Resolution struct {
	Tab schema.Tab
	// Replace is set when the location must be replaced with Location.
	Replace  bool
	Location string
}

// Resolve selects the list named by requested, falling back to the last
// list. A fallback asks the caller to replace its location rather than push.
func Resolve(basePath string, c schema.Collection, requested schema.TabID) (Resolution, error) {
	tab, err := core.CurrentTab(c, requested)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{
		Tab:      tab,
		Replace:  tab.ID != requested,
		Location: Path(basePath, tab.ID),
	}, nil
}
