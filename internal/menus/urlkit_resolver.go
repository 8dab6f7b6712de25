package menus

import (
	"context"
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

// URLKitResolverOptions configures the go-urlkit backed resolver.
type URLKitResolverOptions struct {
	Manager *urlkit.RouteManager
	// DefaultGroup is the group path tried first for every token, for
	// example "frontend" or "frontend.es".
	DefaultGroup string
}

// URLKitResolver resolves route tokens against a go-urlkit RouteManager.
//
// A token "news.show" is looked up as route "news.show" in the default
// group, then as route "show" in group "news". A plain token is only looked
// up in the default group.
type URLKitResolver struct {
	manager      *urlkit.RouteManager
	defaultGroup string

	groupCache map[string]*urlkit.Group
	mu         sync.RWMutex
}

// NewURLKitResolver constructs a resolver backed by go-urlkit.
func NewURLKitResolver(opts URLKitResolverOptions) *URLKitResolver {
	return &URLKitResolver{
		manager:      opts.Manager,
		defaultGroup: strings.TrimSpace(opts.DefaultGroup),
		groupCache:   make(map[string]*urlkit.Group),
	}
}

// NewURLKitResolverFromConfig builds the route manager from cfg.
func NewURLKitResolverFromConfig(cfg *urlkit.Config, defaultGroup string) (resolver *URLKitResolver, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("menus: route config is required")
	}
	defer func() {
		if rec := recover(); rec != nil {
			resolver, err = nil, fmt.Errorf("menus: invalid route config: %v", rec)
		}
	}()
	manager := urlkit.NewRouteManager(cfg)
	return NewURLKitResolver(URLKitResolverOptions{Manager: manager, DefaultGroup: defaultGroup}), nil
}

// Resolve builds the URL for req.Item.Route. Unknown tokens yield "".
func (r *URLKitResolver) Resolve(_ context.Context, req ResolveRequest) (string, error) {
	if r == nil || r.manager == nil || req.Item == nil {
		return "", nil
	}
	token := strings.TrimSpace(req.Item.Route)
	if token == "" {
		return "", nil
	}

	var lastErr error
	for _, candidate := range r.candidates(token) {
		url, err := r.build(candidate.group, candidate.route)
		if err != nil {
			lastErr = err
			continue
		}
		if url != "" {
			return url, nil
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("menus: route %q not resolvable: %w", token, lastErr)
	}
	return "", nil
}

type routeCandidate struct {
	group string
	route string
}

func (r *URLKitResolver) candidates(token string) []routeCandidate {
	var out []routeCandidate
	if r.defaultGroup != "" {
		out = append(out, routeCandidate{group: r.defaultGroup, route: token})
	}
	if idx := strings.LastIndex(token, "."); idx > 0 && idx < len(token)-1 {
		out = append(out, routeCandidate{group: token[:idx], route: token[idx+1:]})
	}
	return out
}

func (r *URLKitResolver) build(groupPath, route string) (url string, err error) {
	group, err := r.groupForPath(groupPath)
	if err != nil {
		return "", err
	}
	defer func() {
		if rec := recover(); rec != nil {
			url, err = "", fmt.Errorf("menus: urlkit builder panic: %v", rec)
		}
	}()
	return group.Builder(route).Build()
}

func (r *URLKitResolver) groupForPath(path string) (*urlkit.Group, error) {
	r.mu.RLock()
	group, ok := r.groupCache[path]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	current, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.groupCache[path] = current
	r.mu.Unlock()
	return current, nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("menus: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	if group == nil {
		return nil, fmt.Errorf("menus: route group %q not found", name)
	}
	return group, nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("menus: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	if group == nil {
		return nil, fmt.Errorf("menus: child group %q not found", name)
	}
	return group, nil
}
