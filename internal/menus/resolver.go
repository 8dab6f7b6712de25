package menus

import (
	"context"
	"strings"
)

const (
	fallbackHref       = "#"
	routeDisplayPrefix = "Route: "
)

// ResolveRequest carries what a URLResolver needs to build a link.
type ResolveRequest struct {
	MenuSlug string
	Item     *MenuItem
}

// URLResolver turns an item's route token into a URL. An empty result with a
// nil error means the token is unknown.
type URLResolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (string, error)
}

// URLResolverFunc adapts a function to URLResolver.
type URLResolverFunc func(ctx context.Context, req ResolveRequest) (string, error)

func (f URLResolverFunc) Resolve(ctx context.Context, req ResolveRequest) (string, error) {
	return f(ctx, req)
}

type nopResolver struct{}

func (nopResolver) Resolve(context.Context, ResolveRequest) (string, error) { return "", nil }

// RawURL returns the stored literal URL without resolution.
func RawURL(item *MenuItem) string {
	if item == nil {
		return ""
	}
	return item.URL
}

// resolveRoute returns the resolved route or "" when it cannot be resolved.
// Resolver faults are treated as unresolved.
func resolveRoute(ctx context.Context, resolver URLResolver, menuSlug string, item *MenuItem) string {
	if item == nil || resolver == nil || strings.TrimSpace(item.Route) == "" {
		return ""
	}
	href, err := resolver.Resolve(ctx, ResolveRequest{MenuSlug: menuSlug, Item: item})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(href)
}

// ResolveHref applies the public link rule: the resolved route, else the
// literal URL, else "#".
func ResolveHref(ctx context.Context, resolver URLResolver, menuSlug string, item *MenuItem) string {
	if item == nil {
		return fallbackHref
	}
	if href := resolveRoute(ctx, resolver, menuSlug, item); href != "" {
		return href
	}
	if url := strings.TrimSpace(item.URL); url != "" {
		return url
	}
	return fallbackHref
}

// DisplayURL is the admin facing form: the resolved route, else
// "Route: {token}" when a route is set, else the literal URL or "#".
func DisplayURL(ctx context.Context, resolver URLResolver, menuSlug string, item *MenuItem) string {
	if item == nil {
		return fallbackHref
	}
	if href := resolveRoute(ctx, resolver, menuSlug, item); href != "" {
		return href
	}
	if route := strings.TrimSpace(item.Route); route != "" {
		return routeDisplayPrefix + route
	}
	if url := strings.TrimSpace(item.URL); url != "" {
		return url
	}
	return fallbackHref
}
