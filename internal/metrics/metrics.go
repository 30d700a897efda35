// Package metrics collects and exposes Prometheus metrics for the Mingle
// backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers application counters. It satisfies the recorder
// interfaces of the relationships engine and the content service so a
// single registry backs the whole process.
type Collector struct {
	requestsSent     prometheus.Counter
	requestsAccepted prometheus.Counter
	postsCreated     prometheus.Counter
	commentsCreated  prometheus.Counter
	storiesCreated   prometheus.Counter
	cascadeDeleted   *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

// NewCollector builds a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mingle_friend_requests_sent_total",
			Help: "Friend requests successfully created.",
		}),
		requestsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mingle_friend_requests_accepted_total",
			Help: "Friend requests accepted into friendships.",
		}),
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mingle_posts_created_total",
			Help: "Posts successfully created.",
		}),
		commentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mingle_comments_created_total",
			Help: "Comments successfully created.",
		}),
		storiesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mingle_stories_created_total",
			Help: "Stories successfully created.",
		}),
		cascadeDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mingle_cascade_deleted_total",
			Help: "Records removed by deletion cascades, by entity.",
		}, []string{"entity"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mingle_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mingle_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		c.requestsSent,
		c.requestsAccepted,
		c.postsCreated,
		c.commentsCreated,
		c.storiesCreated,
		c.cascadeDeleted,
		c.httpStatus,
		c.httpLatency,
	)

	return c
}

// FriendRequestSent records a created friend request.
func (c *Collector) FriendRequestSent() { c.requestsSent.Inc() }

// FriendRequestAccepted records an accepted friend request.
func (c *Collector) FriendRequestAccepted() { c.requestsAccepted.Inc() }

// PostCreated records a created post.
func (c *Collector) PostCreated() { c.postsCreated.Inc() }

// CommentCreated records a created comment.
func (c *Collector) CommentCreated() { c.commentsCreated.Inc() }

// StoryCreated records a created story.
func (c *Collector) StoryCreated() { c.storiesCreated.Inc() }

// CascadeDeleted records count records of the given entity removed by a
// cascade.
func (c *Collector) CascadeDeleted(entity string, count int) {
	c.cascadeDeleted.WithLabelValues(entity).Add(float64(count))
}

// RecordHTTPStatus records a response status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPLatency records how long a request took to serve.
func (c *Collector) RecordHTTPLatency(method string, duration time.Duration) {
	c.httpLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// Handler returns the HTTP handler that serves Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
