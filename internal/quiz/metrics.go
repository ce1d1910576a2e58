package quiz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_sessions_started_total",
		Help: "Number of quiz sessions created.",
	})
	metricSessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_sessions_completed_total",
		Help: "Number of quiz sessions that reached the final question.",
	})
	metricSessionsAbandoned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_sessions_abandoned_total",
		Help: "Number of quiz sessions abandoned before completion.",
	})
	metricQuestionTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_question_timeouts_total",
		Help: "Number of questions resolved by countdown expiry.",
	})
	metricScoreWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_score_write_failures_total",
		Help: "Number of completed sessions whose score write failed.",
	})
)
