package obs

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// routeOf resolves the chi route pattern of a request once routing has run.
// Unmatched requests report fallback.
func routeOf(r *http.Request, fallback string) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if route := rc.RoutePattern(); route != "" {
			return route
		}
	}
	return fallback
}

// resourceParams maps route parameters to the field names used in logs and spans.
var resourceParams = []struct{ param, field string }{
	{param: "id", field: "session_id"},
	{param: "ideaId", field: "idea_id"},
	{param: "shareId", field: "share_id"},
}

type resource struct {
	field string
	value string
}

// resourcesOf returns the domain identifiers found in the routed URL.
func resourcesOf(r *http.Request) []resource {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return nil
	}
	var out []resource
	for _, p := range resourceParams {
		if v := strings.TrimSpace(rc.URLParam(p.param)); v != "" {
			out = append(out, resource{field: p.field, value: v})
		}
	}
	return out
}
