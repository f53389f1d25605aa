package bootstrap

import (
	"github.com/kbukum/guidegen/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig satisfies it through the
// promoted methods, as long as it also defines ApplyDefaults and Validate
// covering its own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
