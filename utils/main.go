package utils

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rs/zerolog/log"
)

// ExponentialBackoff returns a function that returns successive wait intervals,
// starting at initial and multiplied by factor on every call, capped at max.
func ExponentialBackoff(initial time.Duration, max time.Duration, factor float64) func() time.Duration {
	current := initial
	return func() time.Duration {
		retVal := current
		current = time.Duration(float64(current) * factor)
		if current > max {
			current = max
		}
		return retVal
	}
}

// RandomChoice picks one of the choices, with probability proportional to its weight.
//
// Missing weights default to 1, extra weights are ignored.
func RandomChoice[T any](choices []T, weights []int64) (T, error) {
	var zero T
	if len(choices) == 0 {
		return zero, errors.New("no choices to choose from")
	}
	var total int64
	effective := make([]int64, len(choices))
	for idx := range choices {
		if idx < len(weights) {
			effective[idx] = weights[idx]
		} else {
			effective[idx] = 1
		}
		if effective[idx] < 0 {
			return zero, fmt.Errorf("negative weight %d for choice %d", effective[idx], idx)
		}
		total += effective[idx]
	}
	if total == 0 {
		return zero, errors.New("all weights are 0")
	}

	pick := rand.Int63n(total)
	for idx, weight := range effective {
		if pick < weight {
			return choices[idx], nil
		}
		pick -= weight
	}
	// not reachable
	return choices[len(choices)-1], nil
}

// PerSecond returns the rate of elements per second
func PerSecond(elements int64, interval time.Duration) (float64, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("invalid interval %v", interval)
	}
	return float64(elements) / interval.Seconds(), nil
}

// GetStatsd creates a statsd client for the passed address or returns nil
// when no address is configured (metrics disabled).
func GetStatsd(statsdAddr string) *statsd.Client {
	if len(statsdAddr) == 0 {
		log.Info().Msg("No statsd address configured, metrics disabled")
		return nil
	}
	client, err := statsd.New(statsdAddr, statsd.WithNamespace("dlist."))
	if err != nil {
		log.Error().Err(err).Msgf("Could not create statsd client for %s, metrics disabled", statsdAddr)
		return nil
	}
	return client
}
