package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	roundsStartedCounter  prometheus.Counter
	handsPlayedCounter    prometheus.Counter
	passesCounter         prometheus.Counter
	timeoutsCounter       *prometheus.CounterVec
	cardsTradedCounter    prometheus.Counter
	ruleViolationsCounter *prometheus.CounterVec
	activeGamesGauge      prometheus.Gauge
}

func (m *metrics) RoundStarted() {
	m.roundsStartedCounter.Inc()
}

func (m *metrics) HandPlayed() {
	m.handsPlayedCounter.Inc()
}

func (m *metrics) Passed() {
	m.passesCounter.Inc()
}

// TimedOut counts an expired timer; purpose is "turn", "reserve" or "trading".
func (m *metrics) TimedOut(purpose string) {
	m.timeoutsCounter.WithLabelValues(purpose).Inc()
}

func (m *metrics) CardTraded() {
	m.cardsTradedCounter.Inc()
}

func (m *metrics) RuleViolation(permitted bool) {
	label := "false"
	if permitted {
		label = "true"
	}
	m.ruleViolationsCounter.WithLabelValues(label).Inc()
}

func (m *metrics) SetActiveGames(count int) {
	m.activeGamesGauge.Set(float64(count))
}

var Metrics = &metrics{
	roundsStartedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "presidents_rounds_started_total",
		Help: "Total number of rounds dealt",
	}),
	handsPlayedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "presidents_hands_played_total",
		Help: "Total number of hands played",
	}),
	passesCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "presidents_passes_total",
		Help: "Total number of passes",
	}),
	timeoutsCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presidents_timeouts_total",
		Help: "Total number of expired timers by purpose",
	}, []string{"purpose"}),
	cardsTradedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "presidents_cards_traded_total",
		Help: "Total number of cards moved during trading",
	}),
	ruleViolationsCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presidents_rule_violations_total",
		Help: "Total number of rejected commands",
	}, []string{"permitted"}),
	activeGamesGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "presidents_active_games",
		Help: "Count of the engines in the game manager",
	}),
}
