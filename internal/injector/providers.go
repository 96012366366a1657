package injector

import (
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/barrage/internal/core/config"
	"github.com/zeusync/barrage/internal/core/events/bus"
	"github.com/zeusync/barrage/internal/core/observability/log"
	"github.com/zeusync/barrage/internal/core/simulation"
)

var ProviderSet = wire.NewSet(
	config.LoadFile,
	ProvideLogger,
	bus.New,
	simulation.New,
	wire.Bind(new(log.Log), new(*log.Logger)),
)

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log.level: %v", config.ErrInvalidConfig, err)
	}
	return log.New(level), nil
}
