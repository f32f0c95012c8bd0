package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc creates a proxy function for outbound context loads.
// Explicit proxy URLs win; otherwise HTTP_PROXY, HTTPS_PROXY and NO_PROXY apply.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
