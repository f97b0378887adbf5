package adm

// Route is one ordered element sequence from a trace root to a terminal.
type Route []Element

// First returns the first element, or nil for an empty route.
func (r Route) First() Element {
	if len(r) == 0 {
		return nil
	}
	return r[0]
}

// Last returns the terminal element, or nil for an empty route.
func (r Route) Last() Element {
	if len(r) == 0 {
		return nil
	}
	return r[len(r)-1]
}

// Objects returns the objects on the route, root side first.
func (r Route) Objects() []*Object {
	var out []*Object
	for _, e := range r {
		if o, ok := e.(*Object); ok {
			out = append(out, o)
		}
	}
	return out
}

// TracePolicy steers a RouteTracer.
type TracePolicy interface {
	// ShouldRecurse reports whether the walk descends from parent to child.
	ShouldRecurse(parent, child Element) bool
	// ShouldAdd reports whether node is recorded on the route. Excluded nodes
	// are still walked through.
	ShouldAdd(node Element) bool
	// IsEndOfRoute reports whether node terminates a route.
	IsEndOfRoute(node Element) bool
}

// DefaultPolicy records every node and ends routes at channel formats.
type DefaultPolicy struct{}

func (DefaultPolicy) ShouldRecurse(Element, Element) bool { return true }
func (DefaultPolicy) ShouldAdd(Element) bool              { return true }
func (DefaultPolicy) IsEndOfRoute(node Element) bool {
	return node.Kind() == KindChannelFormat
}

// RouteTracer walks forward references depth first and collects every route
// that reaches a terminal. The walk has no cycle guard; it relies on the
// object graph being acyclic.
type RouteTracer struct {
	Policy TracePolicy
}

// Trace returns the routes reachable from root.
func (t RouteTracer) Trace(root Element) []Route {
	policy := t.Policy
	if policy == nil {
		policy = DefaultPolicy{}
	}
	var routes []Route
	var walk func(node Element, path Route)
	walk = func(node Element, path Route) {
		if policy.ShouldAdd(node) {
			path = append(path, node)
		}
		if policy.IsEndOfRoute(node) {
			routes = append(routes, append(Route(nil), path...))
			return
		}
		for _, child := range children(node) {
			if policy.ShouldRecurse(node, child) {
				walk(child, path[:len(path):len(path)])
			}
		}
	}
	walk(root, nil)
	return routes
}
