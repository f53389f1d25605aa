// Package security builds client TLS settings from configuration.
//
// A zero TLSConfig means plaintext; Build returns nil for it so callers can
// assign the result straight into a dialer option:
//
//	tlsCfg, err := cfg.TLS.Build()
//	opts.TLSConfig = tlsCfg
package security
