package app

import (
	"net/http"
	"net/url"
	"strings"
)

// originCheck accepts same-origin upgrades and the listed origins. A "*"
// entry accepts every origin.
func originCheck(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimSuffix(strings.ToLower(o), "/")] = struct{}{}
	}
	_, wildcard := set["*"]

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		if _, ok := set[strings.ToLower(origin)]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return r.Host != "" && strings.EqualFold(u.Host, r.Host)
	}
}
