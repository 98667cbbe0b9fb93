package pageling

import "net/http"

// Host captures the components of the current request URL. It is a pure
// function of request state; routing and rewriting read from it only.
type Host struct {
	Scheme   string
	Domain   string
	Path     string
	RawQuery string
}

// HostFromRequest derives the current scheme, domain, path and query string
// from an incoming request. The X-Forwarded-Proto header wins over the
// connection state so the engine works behind TLS-terminating proxies.
func HostFromRequest(r *http.Request) Host {
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return Host{
		Scheme:   scheme,
		Domain:   r.Host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
}

// Root returns the scheme and domain without a trailing slash.
func (h Host) Root() string {
	return h.Scheme + "://" + h.Domain
}

// PathWithArgs returns the path including the query string.
func (h Host) PathWithArgs() string {
	if h.RawQuery == "" {
		return h.Path
	}
	return h.Path + "?" + h.RawQuery
}

// Args returns the query string in the form routing appends to rewritten
// paths: "?..." or empty.
func (h Host) Args() string {
	if h.RawQuery == "" {
		return ""
	}
	return "?" + h.RawQuery
}

// URL returns the full current URL.
func (h Host) URL() string {
	return h.Root() + h.PathWithArgs()
}
