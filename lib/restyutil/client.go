package restyutil

import (
	"jobtracker-backend/lib/telemetry"
	"net/http/cookiejar"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	BrowserUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	BrowserAcceptLanguage = "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"
	BrowserAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

type ClientOptions struct {
	// defaults to 30 seconds
	Timeout time.Duration
	// wraps the transport with a browser-like TLS and header profile
	CloudflareBypass bool
	// name of the otel tracer used for request spans, defaults to "resty"
	TracerName string
	// optional, every request/response pair is dumped to it when debug logging is enabled
	Output InstrumentOutput
}

// NewClient creates a resty client that presents itself like a desktop
// browser with a Korean locale.
func NewClient(opts ClientOptions) *resty.Client {
	client := resty.New()

	jar, err := cookiejar.New(nil)
	if err == nil {
		client.SetCookieJar(jar)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)
	client.SetHeaders(map[string]string{
		"user-agent":      BrowserUserAgent,
		"accept-language": BrowserAcceptLanguage,
		"accept":          BrowserAccept,
	})

	tracerName := opts.TracerName
	if tracerName == "" {
		tracerName = "resty"
	}
	telemetry.InstrumentResty(client, tracerName)
	InstrumentClient(client, opts.Output)

	return client
}
