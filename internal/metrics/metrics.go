package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Forum Metrics
var (
	// VotesTotal tracks cast votes by target kind and ledger outcome (created/flipped/unchanged)
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_votes_total",
			Help: "Total votes cast by target kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// CorrectMarksTotal tracks mark-correct calls that changed the accepted answer
	CorrectMarksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forum_correct_marks_total",
			Help: "Total accepted-answer changes",
		},
	)

	// QuestionsCreated tracks newly asked questions
	QuestionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forum_questions_created_total",
			Help: "Total questions asked",
		},
	)

	// AnswersCreated tracks submitted answers by author kind (user/guest)
	AnswersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_answers_created_total",
			Help: "Total answers submitted by author kind",
		},
		[]string{"author"},
	)
)

// HTTP Metrics
var (
	// HTTPRequestsTotal tracks served requests by method, route template and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// HTTPErrorsTotal tracks HTTP errors by type
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type"},
	)
)
