package api

import (
	"net"
	"strings"
	"time"
)

// FunctionsRoutePrefix is the prefix used under a function-trigger runtime.
const FunctionsRoutePrefix = "/api"

// Config defines the HTTP server settings.
type Config struct {
	// Address is the listen address of the direct web app.
	Address string `yaml:"address" envconfig:"HTTP_ADDRESS" default:":8080"`

	// RoutePrefix mounts every route under a path prefix, e.g. "/api".
	// Empty means routes at the root, or FunctionsRoutePrefix when FunctionsPort is set.
	RoutePrefix string `yaml:"route_prefix" envconfig:"HTTP_ROUTE_PREFIX"`

	// FunctionsPort is the port handed over by an Azure Functions custom handler host.
	// When set the server listens on it instead of Address.
	FunctionsPort string `yaml:"functions_port" envconfig:"FUNCTIONS_CUSTOMHANDLER_PORT"`

	// MaxBodyBytes caps request bodies. Zero or negative disables the cap.
	MaxBodyBytes int64 `yaml:"max_body_bytes" envconfig:"HTTP_MAX_BODY_BYTES" default:"67108864"`

	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"HTTP_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"HTTP_WRITE_TIMEOUT" default:"5m"`
}

// ListenAddress returns the address the server binds to.
func (c Config) ListenAddress() string {
	if c.FunctionsPort != "" {
		return net.JoinHostPort("", c.FunctionsPort)
	}
	if c.Address == "" {
		return ":8080"
	}
	return c.Address
}

// Prefix returns the normalized route prefix: "" for the root, otherwise a
// path with a leading and no trailing slash.
func (c Config) Prefix() string {
	p := c.RoutePrefix
	if p == "" && c.FunctionsPort != "" {
		p = FunctionsRoutePrefix
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
