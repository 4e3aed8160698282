package routes

import "strings"

// HandlerMethod is one route entry as carried by a handler group.
type HandlerMethod struct {
	Method     string      `json:"method"`
	Parameters []Parameter `json:"parameters"`
	Route      string      `json:"route"`
	RouteSteps []string    `json:"routeSteps"`
}

// HandlerGroup is the unit of generation: one handler file per group.
type HandlerGroup struct {
	Name    string          `json:"name"`
	Methods []HandlerMethod `json:"methods"`
	Imports []string        `json:"imports"`
}

// AddImport appends an import statement. Imports are never removed or reordered.
func (g *HandlerGroup) AddImport(statement string) {
	g.Imports = append(g.Imports, statement)
}

// GroupName derives a group name from a route by replacing every "/" with "_".
// "/users/list" becomes "_users_list".
func GroupName(route string) string {
	return strings.ReplaceAll(route, "/", "_")
}

// Group collects entries into handler groups keyed by GroupName(entry.Route).
// Groups keep first-seen order and every entry lands in exactly one group,
// whatever its HTTP method.
func Group(entries []Entry) []HandlerGroup {
	groups := make([]HandlerGroup, 0)
	index := make(map[string]int)

	for _, entry := range entries {
		name := GroupName(entry.Route)

		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, HandlerGroup{Name: name})
		}

		groups[i].Methods = append(groups[i].Methods, HandlerMethod{
			Method:     entry.Method,
			Parameters: entry.Parameters,
			Route:      entry.Route,
			RouteSteps: entry.RouteSteps,
		})
	}

	return groups
}
