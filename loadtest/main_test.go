package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	vegeta "github.com/tsenart/vegeta/lib"

	"github.com/getsentry/go-dlist/scenario"
	"github.com/getsentry/go-dlist/utils"
	"github.com/getsentry/go-dlist/web_server"
)

func testParams() Params {
	return Params{
		AttackDuration: utils.StringDuration(500 * time.Millisecond),
		NumMessages:    40,
		Per:            utils.StringDuration(time.Second),
		MaxValue:       100,
		MaxIndex:       8,
	}
}

func TestOpTargeterProducesValidSteps(t *testing.T) {
	targeter, err := NewOpTargeter("http://localhost:8000", "abc", testParams())
	if err != nil {
		t.Fatalf("could not create targeter: %v", err)
	}

	for i := 0; i < 200; i++ {
		var tgt vegeta.Target
		if err = targeter(&tgt); err != nil {
			t.Fatalf("targeter failed: %v", err)
		}
		if tgt.Method != http.MethodPost || tgt.URL != "http://localhost:8000/lists/abc/ops/" {
			t.Fatalf("unexpected target %s %s", tgt.Method, tgt.URL)
		}
		var step scenario.Step
		if err = json.Unmarshal(tgt.Body, &step); err != nil {
			t.Fatalf("invalid body %s: %v", tgt.Body, err)
		}
		if err = step.Validate(); err != nil {
			t.Errorf("invalid step %s: %v", tgt.Body, err)
		}
		if _, ok := DefaultWeights[step.Op]; !ok {
			t.Errorf("unexpected operation %s", step.Op)
		}
		if step.Index < 0 || step.Index > 8 || step.Value < 0 || step.Value > 100 {
			t.Errorf("step arguments out of range %s", tgt.Body)
		}
	}

	if err = targeter(nil); !errors.Is(err, vegeta.ErrNilTarget) {
		t.Errorf("expected ErrNilTarget got %v", err)
	}
}

func TestOpTargeterHonoursWeights(t *testing.T) {
	params := testParams()
	params.Weights = map[string]int64{"addTail": 1, "deleteHead": 0}
	targeter, err := NewOpTargeter("http://localhost:8000", "abc", params)
	if err != nil {
		t.Fatalf("could not create targeter: %v", err)
	}
	for i := 0; i < 50; i++ {
		var tgt vegeta.Target
		if err = targeter(&tgt); err != nil {
			t.Fatalf("targeter failed: %v", err)
		}
		var step scenario.Step
		if err = json.Unmarshal(tgt.Body, &step); err != nil {
			t.Fatalf("invalid body %s: %v", tgt.Body, err)
		}
		if step.Op != "addTail" {
			t.Errorf("operation with zero weight generated: %s", step.Op)
		}
	}
}

func TestOpChoices(t *testing.T) {
	params := testParams()
	params.Weights = map[string]int64{"reverse": 2, "addHead": 5}
	ops, weights, err := params.opChoices()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"addHead", "reverse"}, ops); diff != "" {
		t.Errorf("operations (-expect +actual)\n %s", diff)
	}
	if diff := cmp.Diff([]int64{5, 2}, weights); diff != "" {
		t.Errorf("weights (-expect +actual)\n %s", diff)
	}

	params.Weights = map[string]int64{"pop": 1}
	if _, _, err = params.opChoices(); !errors.Is(err, scenario.ErrUnknownOp) {
		t.Errorf("expected ErrUnknownOp got %v", err)
	}
	params.Weights = map[string]int64{"addHead": 0}
	if _, _, err = params.opChoices(); err == nil {
		t.Errorf("expected an error when all weights are 0")
	}
}

func TestInvalidParams(t *testing.T) {
	type test struct {
		name   string
		modify func(*Params)
	}
	var tests = []test{
		{"no duration", func(p *Params) { p.AttackDuration = 0 }},
		{"no messages", func(p *Params) { p.NumMessages = 0 }},
		{"no interval", func(p *Params) { p.Per = 0 }},
		{"negative value", func(p *Params) { p.MaxValue = -1 }},
	}
	for _, test := range tests {
		params := testParams()
		test.modify(&params)
		if _, err := Attack(context.Background(), "http://localhost:1", params); err == nil {
			t.Errorf("test: %s expected an error", test.name)
		}
	}
}

func TestAttackPlayground(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := httptest.NewServer(web_server.NewEngine(nil))
	defer server.Close()

	metrics, err := Attack(context.Background(), server.URL, testParams())
	if err != nil {
		t.Fatalf("attack failed: %v", err)
	}
	if metrics.Requests == 0 {
		t.Errorf("no requests sent")
	}
	for code := range metrics.StatusCodes {
		if code != "200" && code != "409" {
			t.Errorf("unexpected status code %s, count: %d", code, metrics.StatusCodes[code])
		}
	}
}

func TestCreateListGivesUpOnClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := createList(ctx, server.Client(), server.URL); err == nil {
		t.Errorf("expected an error")
	}
}
