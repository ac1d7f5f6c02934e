package main

import (
	"github.com/anisan-cli/skipsync/cmd"
	"github.com/anisan-cli/skipsync/config"
	"github.com/anisan-cli/skipsync/internal/cache"
	"github.com/anisan-cli/skipsync/key"
	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	if ttl := viper.GetDuration(key.AniskipCacheTTL); ttl > 0 {
		go func() {
			if err := cache.New(where.Cache(), ttl).CollectGarbage(); err != nil {
				log.Warnf("cache: %v", err)
			}
		}()
	}

	cmd.Execute()
}
