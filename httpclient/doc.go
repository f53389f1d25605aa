// Package httpclient is the outbound HTTP client used by the geocoding,
// weather and LLM providers.
//
// A Client wraps net/http with per-upstream configuration, API key or
// bearer auth, retries of transient failures and an optional circuit
// breaker. Non-2xx responses are classified into *Error values so callers
// can distinguish a missing resource from an unavailable upstream:
//
//	c, _ := httpclient.New(httpclient.Config{
//	    Name:    "mapbox",
//	    BaseURL: "https://api.mapbox.com",
//	    Auth:    httpclient.APIKeyQuery(token, "access_token"),
//	    Retry:   httpclient.DefaultRetryConfig(),
//	})
//	out, err := httpclient.GetJSON[featureCollection](ctx, c, "/geocoding/v5/mapbox.places/Paris.json")
package httpclient
