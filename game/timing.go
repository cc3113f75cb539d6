package game

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Timing holds the timer lengths in milliseconds.
type Timing struct {
	TurnTime    uint32 `yaml:"turnTime"`
	ReserveTime uint32 `yaml:"reserveTime"`
	TradingTime uint32 `yaml:"tradingTime"`
}

func DefaultTiming() Timing {
	return Timing{
		TurnTime:    30000,
		ReserveTime: 60000,
		TradingTime: 60000,
	}
}

func (t Timing) Turn() time.Duration {
	return time.Duration(t.TurnTime) * time.Millisecond
}

func (t Timing) Reserve() time.Duration {
	return time.Duration(t.ReserveTime) * time.Millisecond
}

func (t Timing) Trading() time.Duration {
	return time.Duration(t.TradingTime) * time.Millisecond
}

// ParseTimingConfig reads a timing YAML file. Keys missing from the file keep
// their default.
func ParseTimingConfig(timingFile string) (Timing, error) {
	bytes, err := ioutil.ReadFile(timingFile)
	if err != nil {
		return Timing{}, errors.Wrap(err, fmt.Sprintf("Error reading timing config file [%s]", timingFile))
	}

	data := DefaultTiming()
	err = yaml.Unmarshal(bytes, &data)
	if err != nil {
		return Timing{}, errors.Wrap(err, fmt.Sprintf("Error parsing timing YAML file [%s]", timingFile))
	}
	if data.TurnTime == 0 || data.TradingTime == 0 {
		return Timing{}, fmt.Errorf("turnTime and tradingTime must be positive in [%s]", timingFile)
	}

	return data, nil
}
