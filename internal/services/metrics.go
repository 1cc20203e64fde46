package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_posts_created_total",
		Help: "Posts written to the store.",
	})

	commentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_comments_created_total",
		Help: "Comments written to the store.",
	})

	likesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_likes_submitted_total",
		Help: "Like submissions by target kind and outcome (created, existing, rejected).",
	}, []string{"target", "outcome"})

	threadComments = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agora_thread_comments",
		Help:    "Comments assembled per thread request.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	threadOrphans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_thread_orphans_dropped_total",
		Help: "Comments left out of a thread because their parent chain was broken.",
	})

	leaderboardDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agora_leaderboard_duration_seconds",
		Help:    "Time spent computing the karma leaderboard.",
		Buckets: prometheus.DefBuckets,
	})
)
