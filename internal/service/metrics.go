package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_created_total",
		Help: "Total number of reviews created.",
	})

	reviewsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_deleted_total",
		Help: "Total number of reviews deleted.",
	})

	reviewRatings = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "review_rating",
		Help:    "Distribution of submitted review ratings.",
		Buckets: []float64{1, 2, 3, 4, 5},
	})

	productMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_mutations_total",
		Help: "Product writes by operation.",
	}, []string{"operation"})

	imageCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_image_cleanup_failures_total",
		Help: "Product images that could not be removed from storage.",
	})

	usersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "users_registered_total",
		Help: "Total number of registered accounts.",
	})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts_total",
		Help: "Login attempts by result.",
	}, []string{"result"})
)
