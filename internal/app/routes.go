package app

import (
	"context"
	"net/url"
	"regexp"

	"github.com/erebus-go/erebus/internal/config"
	"github.com/erebus-go/erebus/pkg/controller"
	"github.com/erebus-go/erebus/pkg/router"
)

// placeholder matches "{name}" in fragment URLs.
var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// route is a configured route with its pattern compiled.
type route struct {
	pattern router.Pattern
	spec    config.RouteConfig
}

// compileRoutes compiles the configured routes in registration order.
func compileRoutes(cfg *config.Config) ([]route, error) {
	routes := make([]route, 0, len(cfg.Routes))
	for _, rc := range cfg.Routes {
		p, err := rc.Compile()
		if err != nil {
			return nil, err
		}
		routes = append(routes, route{pattern: p, spec: rc})
	}
	return routes, nil
}

// controllerSpec turns a route declaration into a controller spec.
func controllerSpec(rc config.RouteConfig) controller.Spec {
	spec := controller.Spec{Target: rc.Target}
	switch {
	case rc.Inline != "":
		spec.Fragment = controller.Inline(rc.Inline)
	case placeholder.MatchString(rc.Fragment):
		spec.Fragment = fragmentResolver(rc.Fragment)
	case rc.Fragment != "":
		spec.Fragment = controller.URL(rc.Fragment)
	}
	return spec
}

// fragmentResolver substitutes route parameters into a fragment URL.
// Values are path escaped; unknown names expand to "".
func fragmentResolver(tmpl string) controller.Resolver {
	return func(_ context.Context, params router.Params) (controller.Fragment, error) {
		return controller.URL(expandFragment(tmpl, params)), nil
	}
}

func expandFragment(tmpl string, params router.Params) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[1 : len(m)-1]
		return url.PathEscape(params.Get(name))
	})
}

// register binds the routes and the default route of cfg to engine.
func register(engine *router.Engine, factory *controller.Factory, routes []route, def *config.RouteConfig) {
	for _, r := range routes {
		engine.Handle(r.pattern, factory.Controller(controllerSpec(r.spec)))
	}
	if def != nil {
		engine.Default(factory.Controller(controllerSpec(*def)))
	}
}
