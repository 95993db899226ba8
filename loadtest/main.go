package loadtest

/*
Contains code for attacking the list playground with random operations
*/

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	vegeta "github.com/tsenart/vegeta/lib"

	"github.com/getsentry/go-dlist/utils"
)

// Params controls a load test against the playground
type Params struct {
	AttackDuration utils.StringDuration `json:"attackDuration" yaml:"attackDuration"`
	NumMessages    int                  `json:"numMessages" yaml:"numMessages"`
	Per            utils.StringDuration `json:"per" yaml:"per"`
	// Weights is the relative frequency of each operation, operations
	// not present are never generated (empty means DefaultWeights)
	Weights map[string]int64 `json:"weights,omitempty" yaml:"weights,omitempty"`
	// MaxValue is the largest payload of inserted nodes
	MaxValue int `json:"maxValue" yaml:"maxValue"`
	// MaxIndex is the largest index used by index based operations
	MaxIndex int `json:"maxIndex" yaml:"maxIndex"`
}

// DefaultWeights favours insertions so that the attacked list grows
var DefaultWeights = map[string]int64{
	"addHead":       4,
	"addTail":       4,
	"insertAfter":   2,
	"insertBefore":  2,
	"insertAtIndex": 3,
	"deleteHead":    2,
	"deleteTail":    2,
	"deleteAtIndex": 2,
	"getIndex":      3,
	"reverse":       1,
	"size":          1,
}

const numLabels = 16

func (params Params) validate() error {
	if params.AttackDuration <= 0 {
		return fmt.Errorf("invalid attack duration %v", time.Duration(params.AttackDuration))
	}
	if params.NumMessages <= 0 {
		return fmt.Errorf("invalid number of messages %d", params.NumMessages)
	}
	if _, err := utils.PerSecond(int64(params.NumMessages), time.Duration(params.Per)); err != nil {
		return err
	}
	if params.MaxValue < 0 || params.MaxIndex < 0 {
		return errors.New("negative maxValue or maxIndex")
	}
	return nil
}

// Attack runs a load test against the playground at targetUrl.
//
// A fresh list is created for the attack and checked for consistency once the
// attack is over. Cancelling ctx stops the attack early.
func Attack(ctx context.Context, targetUrl string, params Params) (*vegeta.Metrics, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 2 * time.Second}

	listId, err := createList(ctx, client, targetUrl)
	if err != nil {
		return nil, err
	}
	log.Info().Msgf("Attacking list %s at %s", listId, targetUrl)

	targeter, err := NewOpTargeter(targetUrl, listId, params)
	if err != nil {
		return nil, err
	}

	rate := vegeta.Rate{Freq: params.NumMessages, Per: time.Duration(params.Per)}
	attacker := vegeta.NewAttacker(vegeta.Timeout(time.Millisecond*500), vegeta.Redirects(0))
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			log.Info().Msg("Attack cancelled")
			attacker.Stop()
		case <-done:
		}
	}()

	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, rate, time.Duration(params.AttackDuration), "dlist") {
		metrics.Add(res)
	}
	close(done)
	metrics.Close()
	logMetrics(params, &metrics)

	if err = checkList(ctx, client, targetUrl, listId); err != nil {
		return &metrics, err
	}
	return &metrics, nil
}

func logMetrics(params Params, metrics *vegeta.Metrics) {
	requested, _ := utils.PerSecond(int64(params.NumMessages), time.Duration(params.Per))
	log.Info().Msgf("Attack finished: %d requests, requested rate %.2f/s, actual rate %.2f/s",
		metrics.Requests, requested, metrics.Rate)
	log.Info().Msgf("Latency mean %v, p95 %v, p99 %v, max %v",
		metrics.Latencies.Mean, metrics.Latencies.P95, metrics.Latencies.P99, metrics.Latencies.Max)
	// 409 is a legitimate answer (e.g. deleting from an empty list)
	log.Info().Msgf("Status codes: %v", metrics.StatusCodes)
	for _, errMsg := range metrics.Errors {
		log.Error().Msgf("Attack error: %s", errMsg)
	}
}

// createList creates the list that will be attacked.
//
// Network errors and 5xx responses are retried with an exponential backoff
// until ctx is done.
func createList(ctx context.Context, client *http.Client, targetUrl string) (string, error) {
	createUrl := fmt.Sprintf("%s/lists/", targetUrl)
	backoff := utils.ExponentialBackoff(time.Millisecond*500, time.Second*10, 1.5)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, createUrl, nil)
		if err != nil {
			return "", err
		}
		resp, err := client.Do(req)
		if err == nil {
			var body struct {
				Id string `json:"id"`
			}
			decodeErr := json.NewDecoder(resp.Body).Decode(&body)
			_ = resp.Body.Close()
			if resp.StatusCode < 300 {
				if decodeErr != nil {
					return "", fmt.Errorf("invalid list creation response: %w", decodeErr)
				}
				return body.Id, nil
			}
			if resp.StatusCode < 500 {
				return "", fmt.Errorf("could not create list, status: %d", resp.StatusCode)
			}
			err = fmt.Errorf("status: %d", resp.StatusCode)
		}

		nextTry := backoff()
		log.Warn().Err(err).Msgf("Failed to create list trying again in %v", nextTry)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(nextTry):
		}
	}
}

// checkList asks the playground to verify the consistency of the attacked list
func checkList(ctx context.Context, client *http.Client, targetUrl string, listId string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/lists/%s/check", targetUrl, listId), nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("list %s failed its consistency check: %s", listId, body.Error)
	}
	log.Info().Msgf("List %s is consistent", listId)
	return nil
}
