package game

import (
	"fmt"

	"presidents.com/server/logging"
	"presidents.com/server/util"
)

// CreateGameManager builds a manager from the environment: TIMING_CONFIG
// names the timing YAML and DEAL_SETUP_METHOD=redis reads scripted deals from
// Redis. LOG_LEVEL sets the process log level.
func CreateGameManager(newNotifier NotifierFactory) (*Manager, error) {
	logging.SetLevel(util.Env.GetZeroLogLogLevel())

	timing := DefaultTiming()
	if timingFile := util.Env.GetTimingConfig(); timingFile != "" {
		var err error
		timing, err = ParseTimingConfig(timingFile)
		if err != nil {
			return nil, err
		}
	}

	var dealer DealSource = NewRandomDealer(nil)
	if util.Env.GetDealSetupMethod() == "redis" {
		var redisHost = util.Env.GetRedisHost()
		var redisPort = util.Env.GetRedisPort()
		var redisPW = util.Env.GetRedisPW()
		var redisDB = util.Env.GetRedisDB()
		dealer = NewRedisDealSetup(fmt.Sprintf("%s:%d", redisHost, redisPort), redisPW, redisDB, dealer)
	}

	return NewGameManager(nil, newNotifier, dealer, timing), nil
}
