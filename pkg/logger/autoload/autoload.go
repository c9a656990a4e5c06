// Package autoload initialises the global zerolog logger from LOG_* env vars
// when blank-imported.
package autoload

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	logx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/logger"
)

func init() {
	var conf logx.Config
	if err := envconfig.Process("LOG", &conf); err != nil {
		logx.Init()
		log.Warn().Err(err).Msg("invalid LOG_* config, using defaults")
		return
	}
	logx.Init(conf)
}
