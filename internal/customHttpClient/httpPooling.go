package customHttpClient

import (
	"net"
	"net/http"
	"time"

	"github.com/akolanti/GradeRAG/internal/config"
)

var pooledTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:   true,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
	TLSHandshakeTimeout: 10 * time.Second,
}

// Shared is handed to every provider sdk so embedding and completion calls
// reuse connections. Deadlines come from the per-call context, not the client.
var Shared = &http.Client{Transport: pooledTransport}
