// Package version reports the build version of the service.
package version
