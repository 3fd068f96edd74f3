package queue

import "github.com/shashiranjanraj/bazaar/pkg/metrics"

func observe(name, result string) {
	metrics.JobProcessed(name, result)
}
