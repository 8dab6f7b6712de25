package menus

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/goliatone/go-menus/internal/logging"
	"github.com/goliatone/go-menus/pkg/interfaces"
)

// RenderOptions controls the markup produced by TreeRenderer. Empty fields
// fall back to DefaultRenderOptions.
type RenderOptions struct {
	ListClass        string
	ItemClass        string
	LinkClass        string
	ActiveClass      string
	HasChildrenClass string
	SubmenuClass     string
	// CurrentURL marks the item whose href equals it exactly as active.
	CurrentURL string
}

// DefaultRenderOptions returns the stock class names.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		ListClass:        "menu",
		ItemClass:        "menu-item",
		LinkClass:        "menu-link",
		ActiveClass:      "active",
		HasChildrenClass: "has-children",
		SubmenuClass:     "submenu",
	}
}

// RenderOptionsFromMap reads the presentation layer's option map. Unknown
// keys and non string values are ignored.
func RenderOptionsFromMap(values map[string]any) RenderOptions {
	opts := DefaultRenderOptions()
	targets := map[string]*string{
		"ul_class":           &opts.ListClass,
		"li_class":           &opts.ItemClass,
		"a_class":            &opts.LinkClass,
		"active_class":       &opts.ActiveClass,
		"has_children_class": &opts.HasChildrenClass,
		"submenu_class":      &opts.SubmenuClass,
		"current_url":        &opts.CurrentURL,
	}
	for key, raw := range values {
		dest, ok := targets[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case string:
			*dest = v
		case fmt.Stringer:
			*dest = v.String()
		}
	}
	return opts
}

// WithDefaults fills blank fields from base.
func (o RenderOptions) WithDefaults(base RenderOptions) RenderOptions {
	fill := func(v *string, fallback string) {
		if strings.TrimSpace(*v) == "" {
			*v = fallback
		}
	}
	fill(&o.ListClass, base.ListClass)
	fill(&o.ItemClass, base.ItemClass)
	fill(&o.LinkClass, base.LinkClass)
	fill(&o.ActiveClass, base.ActiveClass)
	fill(&o.HasChildrenClass, base.HasChildrenClass)
	fill(&o.SubmenuClass, base.SubmenuClass)
	fill(&o.CurrentURL, base.CurrentURL)
	return o
}

var menuTemplate = template.Must(template.New("menu").Parse(
	`{{define "list"}}<ul{{with .Class}} class="{{.}}"{{end}}>` +
		`{{range .Items}}<li{{with .ItemClass}} class="{{.}}"{{end}}>` +
		`<a href="{{.Href}}"{{with .LinkClass}} class="{{.}}"{{end}}{{with .Target}} target="{{.}}"{{end}}{{if .Active}} aria-current="page"{{end}}>{{.Title}}</a>` +
		`{{with .Children}}{{template "list" .}}{{end}}</li>{{end}}</ul>{{end}}` +
		`{{template "list" .}}`,
))

type listView struct {
	Class string
	Items []itemView
}

type itemView struct {
	Title     string
	Href      string
	Target    string
	ItemClass string
	LinkClass string
	Active    bool
	Children  *listView
}

// RendererOption customizes a TreeRenderer.
type RendererOption func(*TreeRenderer)

// WithRendererLogger sets the logger used to report template faults.
func WithRendererLogger(logger interfaces.Logger) RendererOption {
	return func(r *TreeRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRendererDefaults replaces the options blank fields fall back to.
func WithRendererDefaults(opts RenderOptions) RendererOption {
	return func(r *TreeRenderer) {
		r.defaults = opts.WithDefaults(DefaultRenderOptions())
	}
}

// TreeRenderer turns an ordered forest into nested <ul> markup. Titles,
// classes and URLs are escaped by html/template; unsafe URL schemes are
// neutralized.
type TreeRenderer struct {
	resolver URLResolver
	defaults RenderOptions
	maxDepth int
	logger   interfaces.Logger
}

// NewTreeRenderer returns a renderer that resolves routes with resolver. A
// nil resolver leaves every route unresolved.
func NewTreeRenderer(resolver URLResolver, opts ...RendererOption) *TreeRenderer {
	if resolver == nil {
		resolver = nopResolver{}
	}
	r := &TreeRenderer{
		resolver: resolver,
		defaults: DefaultRenderOptions(),
		maxDepth: DefaultMaxDepth,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render produces the markup for forest. An empty forest renders to "".
func (r *TreeRenderer) Render(ctx context.Context, menuSlug string, forest []*MenuItem, opts RenderOptions) string {
	if len(forest) == 0 {
		return ""
	}
	opts = opts.WithDefaults(r.defaults)
	root := r.buildList(ctx, menuSlug, forest, opts, 0)

	var out strings.Builder
	if err := menuTemplate.Execute(&out, root); err != nil {
		r.logger.Error("menus.render.failed", "menu_slug", menuSlug, "error", err)
		return ""
	}
	return out.String()
}

func (r *TreeRenderer) buildList(ctx context.Context, menuSlug string, nodes []*MenuItem, opts RenderOptions, depth int) *listView {
	list := &listView{Class: opts.ListClass}
	if depth > 0 {
		list.Class = joinClasses(opts.ListClass, opts.SubmenuClass)
	}
	for _, node := range nodes {
		if node == nil {
			continue
		}
		href := ResolveHref(ctx, r.resolver, menuSlug, node)
		active := opts.CurrentURL != "" && href == opts.CurrentURL

		view := itemView{
			Title:     node.Title,
			Href:      href,
			Target:    string(node.Target),
			LinkClass: joinClasses(opts.LinkClass, node.CSSClass),
			Active:    active,
		}
		itemClasses := []string{opts.ItemClass}
		if len(node.Children) > 0 && depth+1 < r.maxDepth {
			view.Children = r.buildList(ctx, menuSlug, node.Children, opts, depth+1)
			itemClasses = append(itemClasses, opts.HasChildrenClass)
		}
		if active {
			itemClasses = append(itemClasses, opts.ActiveClass)
		}
		view.ItemClass = joinClasses(itemClasses...)
		list.Items = append(list.Items, view)
	}
	return list
}

func joinClasses(parts ...string) string {
	seen := map[string]struct{}{}
	var out []string
	for _, part := range parts {
		for _, class := range strings.Fields(part) {
			if _, ok := seen[class]; ok {
				continue
			}
			seen[class] = struct{}{}
			out = append(out, class)
		}
	}
	return strings.Join(out, " ")
}
