package loadtest

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	vegeta "github.com/tsenart/vegeta/lib"

	"github.com/getsentry/go-dlist/scenario"
	"github.com/getsentry/go-dlist/utils"
)

// opChoices returns the operations to generate and their weights, sorted by name
func (params Params) opChoices() ([]string, []int64, error) {
	weights := params.Weights
	if len(weights) == 0 {
		weights = DefaultWeights
	}
	ops := make([]string, 0, len(weights))
	for op := range weights {
		if scenario.Lookup(op) == nil {
			return nil, nil, fmt.Errorf("%w: '%s'", scenario.ErrUnknownOp, op)
		}
		ops = append(ops, op)
	}
	sort.Strings(ops)
	retVal := make([]int64, 0, len(ops))
	for _, op := range ops {
		retVal = append(retVal, weights[op])
	}
	// fail now rather than on every target
	if _, err := utils.RandomChoice(ops, retVal); err != nil {
		return nil, nil, err
	}
	return ops, retVal, nil
}

// NewOpTargeter returns a targeter that applies random operations to a list
func NewOpTargeter(targetUrl string, listId string, params Params) (vegeta.Targeter, error) {
	ops, weights, err := params.opChoices()
	if err != nil {
		return nil, err
	}
	opUrl := fmt.Sprintf("%s/lists/%s/ops/", targetUrl, listId)

	return func(tgt *vegeta.Target) error {
		if tgt == nil {
			return vegeta.ErrNilTarget
		}
		op, err := utils.RandomChoice(ops, weights)
		if err != nil {
			return err
		}
		body, err := json.Marshal(randomStep(op, params))
		if err != nil {
			return err
		}

		tgt.Method = http.MethodPost
		tgt.URL = opUrl
		tgt.Header = make(http.Header)
		tgt.Header.Set("Content-Type", "application/json")
		tgt.Body = body
		log.Trace().Msgf("Attacking with %s", body)
		return nil
	}, nil
}

// randomStep creates a step for op with random arguments.
//
// Half of the inserted nodes get labels from a small pool so that anchors
// usually resolve, a label naming a node that is still linked produces a
// "linked" error.
func randomStep(op string, params Params) scenario.Step {
	step := scenario.Step{Op: op}
	switch strings.ToLower(op) {
	case "addhead", "addtail", "insertatindex", "insertafter", "insertbefore":
		step.Value = rand.Intn(params.MaxValue + 1)
		if rand.Intn(2) == 0 {
			step.Label = fmt.Sprintf("n%d", rand.Intn(numLabels))
		}
	}
	switch strings.ToLower(op) {
	case "insertafter", "insertbefore":
		step.Anchor = fmt.Sprintf("n%d", rand.Intn(numLabels))
	case "insertatindex", "deleteatindex", "getindex":
		step.Index = rand.Intn(params.MaxIndex + 1)
	}
	return step
}
