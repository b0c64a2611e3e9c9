// Package httpclient builds the shared *http.Client every chunk transfer and
// preflight request borrows: a connect timeout plus exponential-backoff
// retries on transient transport failures, via retryablehttp.
package httpclient

import (
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// connectTimeout is fixed at 6 seconds per §4.7 step 1.
const connectTimeout = 6 * time.Second

// New builds an *http.Client wrapping maxRetries of exponential-backoff retry
// on transient failures, with a 6s connect timeout. Retries are delegated
// entirely to the middleware; the core never re-issues a request itself.
func New(maxRetries int, log *zap.Logger) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: transport}
	rc.RetryMax = maxRetries
	// Once retries are exhausted, hand back the last response (or transport
	// error) as-is rather than replacing it with a generic "giving up" error.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.Debug("retrying request", zap.String("url", req.URL.String()), zap.Int("attempt", attempt))
		}
	}

	return rc.StandardClient()
}
