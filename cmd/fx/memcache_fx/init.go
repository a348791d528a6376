package memcache_fx

import (
	"go.uber.org/fx"

	mem "herotime/pkg/memcache"
)

var Module = fx.Provide(provideUserLocks)

func provideUserLocks() *mem.UserLocks {
	return mem.NewUserLocks()
}
