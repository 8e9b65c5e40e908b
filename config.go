package guilded

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Config defines optional parameters for a Client. The zero value is a
// usable configuration.
type Config struct {
	Logger logrus.FieldLogger

	// HTTPClient is used for all REST requests. Defaults to a client with
	// a 30 second timeout.
	HTTPClient *http.Client

	// RestURL overrides the API endpoint. Defaults to rest.DefaultBaseURL.
	RestURL string

	// GatewayURL overrides the gateway endpoint. Defaults to
	// DefaultGatewayURL.
	GatewayURL string

	// MaxMessageCache is the maximum number of messages to keep in the
	// message cache. Defaults to 1000. Set to a negative value to disable
	// the cache entirely.
	MaxMessageCache int

	// DisableServerWebsockets prevents the client from opening
	// server-scoped gateway connections in addition to the main one.
	DisableServerWebsockets bool

	// UserAgent overrides the User-Agent header sent with REST requests.
	UserAgent string
}

const defaultMaxMessageCache = 1000

func (cfg *Config) maxMessageCache() int {
	switch {
	case cfg.MaxMessageCache < 0:
		return 0
	case cfg.MaxMessageCache == 0:
		return defaultMaxMessageCache
	default:
		return cfg.MaxMessageCache
	}
}
