//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/barrage/internal/core/simulation"
)

func InitializeWorld(configPath string) (*simulation.World, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
