package memcache_fx

import (
	"go.uber.org/fx"

	mem "rumbo/pkg/memcache"
)

var Module = fx.Provide(provideCheckpointStore)

func provideCheckpointStore() mem.CheckpointStore {
	return mem.NewCheckpoints()
}
