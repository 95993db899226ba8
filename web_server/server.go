package web_server

/*
Contains code for the list playground web server
*/

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/getsentry/go-dlist/dlist"
	"github.com/getsentry/go-dlist/scenario"
	"github.com/getsentry/go-dlist/utils"
)

var errUnknownList = errors.New("unknown list")

// listStore holds the lists served by the playground.
//
// Lists are not safe for concurrent use so every access goes through the lock.
type listStore struct {
	lock    sync.Mutex
	runners map[string]*scenario.Runner
}

func newListStore() *listStore {
	return &listStore{runners: make(map[string]*scenario.Runner)}
}

func (store *listStore) create() string {
	store.lock.Lock()
	defer store.lock.Unlock()
	id := uuid.New().String()
	store.runners[id] = scenario.NewRunner()
	log.Info().Msgf("Created list: %s", id)
	return id
}

func (store *listStore) remove(id string) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	runner, ok := store.runners[id]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownList, id)
	}
	runner.List().Clear()
	delete(store.runners, id)
	log.Info().Msgf("Removed list: %s", id)
	return nil
}

// ids returns a sorted copy of the list ids at the moment of calling
func (store *listStore) ids() []string {
	store.lock.Lock()
	defer store.lock.Unlock()
	var retVal = make([]string, 0, len(store.runners))
	for id := range store.runners {
		retVal = append(retVal, id)
	}
	sort.Strings(retVal)
	return retVal
}

// withList runs fn on the runner of list id while holding the store lock
func (store *listStore) withList(id string, fn func(runner *scenario.Runner) error) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	runner, ok := store.runners[id]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownList, id)
	}
	return fn(runner)
}

// stats returns the number of lists and the total number of linked nodes
func (store *listStore) stats() (int, int) {
	store.lock.Lock()
	defer store.lock.Unlock()
	nodes := 0
	for _, runner := range store.runners {
		nodes += runner.List().Size()
	}
	return len(store.runners), nodes
}

// collectMetricsLoop regularly produces global playground metrics
func collectMetricsLoop(statsdClient *statsd.Client, store *listStore) {
	if statsdClient == nil {
		return
	}

	tags := []string{}
	sampleRate := 1.0
	flushPeriod := 1 * time.Second

	for {
		lists, nodes := store.stats()
		_ = statsdClient.Gauge("lists", float64(lists), tags, sampleRate)
		_ = statsdClient.Gauge("nodes", float64(nodes), tags, sampleRate)

		time.Sleep(flushPeriod)
	}
}

func RunWebServer(port string, statsdAddr string) {
	gin.SetMode(gin.ReleaseMode)
	engine := NewEngine(utils.GetStatsd(statsdAddr))
	if len(port) > 0 {
		port = fmt.Sprintf(":%s", port)
	}
	log.Info().Msgf("List playground listening at %s", port)
	_ = engine.SetTrustedProxies([]string{})
	if err := http.ListenAndServe(port, withCors(engine)); err != nil {
		log.Error().Err(err).Msg("List playground stopped")
	}
}

// withCors lets browser clients on other origins use the playground
func withCors(handler http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(handler)
}

// NewEngine creates the playground request handler, starting with no lists.
// A nil statsdClient disables metrics.
func NewEngine(statsdClient *statsd.Client) *gin.Engine {
	var store = newListStore()
	go collectMetricsLoop(statsdClient, store)
	return newEngine(store, statsdClient)
}

func newEngine(store *listStore, statsdClient *statsd.Client) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/ping/", pingHandler)
	engine.GET("/lists/", withStore(store, listsHandler))
	engine.POST("/lists/", withStore(store, createListHandler))
	engine.GET("/lists/:id", withStore(store, getListHandler))
	engine.DELETE("/lists/:id", withStore(store, deleteListHandler))
	engine.GET("/lists/:id/check", withStore(store, checkListHandler))
	engine.POST("/lists/:id/ops/", opHandlerFactory(store, statsdClient))
	return engine
}

type handlerWithStore func(*listStore, *gin.Context)

// withStore constructs a Gin handler from a handler that also accepts the list store
func withStore(store *listStore, handler handlerWithStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		handler(store, ctx)
	}
}

func pingHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, okJsonResponse())
}

func listsHandler(store *listStore, ctx *gin.Context) {
	ctx.JSON(http.StatusOK, listsResponse{Lists: store.ids()})
}

func createListHandler(store *listStore, ctx *gin.Context) {
	ctx.JSON(http.StatusCreated, createListResponse{Id: store.create()})
}

func getListHandler(store *listStore, ctx *gin.Context) {
	var resp = listResponse{Id: ctx.Param("id")}
	err := store.withList(resp.Id, func(runner *scenario.Runner) error {
		resp.Size = runner.List().Size()
		resp.Values = runner.List().Values()
		return nil
	})
	if err != nil {
		ctx.JSON(http.StatusNotFound, errorJsonResponse(err))
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func deleteListHandler(store *listStore, ctx *gin.Context) {
	if err := store.remove(ctx.Param("id")); err != nil {
		ctx.JSON(http.StatusNotFound, errorJsonResponse(err))
		return
	}
	ctx.JSON(http.StatusOK, okJsonResponse())
}

func checkListHandler(store *listStore, ctx *gin.Context) {
	var checkErr error
	err := store.withList(ctx.Param("id"), func(runner *scenario.Runner) error {
		checkErr = runner.List().Check()
		return nil
	})
	if err != nil {
		ctx.JSON(http.StatusNotFound, errorJsonResponse(err))
		return
	}
	if checkErr != nil {
		log.Error().Err(checkErr).Msgf("List %s failed its consistency check", ctx.Param("id"))
		ctx.JSON(http.StatusInternalServerError, errorJsonResponse(checkErr))
		return
	}
	ctx.JSON(http.StatusOK, okJsonResponse())
}

// opHandlerFactory creates the handler applying a scenario.Step to a list.
//
// Operation failures (e.g. deleting from an empty list) are reported with 409,
// the list stays usable.
func opHandlerFactory(store *listStore, statsdClient *statsd.Client) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var step scenario.Step
		if err := ctx.ShouldBindJSON(&step); err != nil {
			log.Error().Err(err).Msg("Could not parse operation")
			ctx.JSON(http.StatusBadRequest, errorResponse{Error: "Could not parse operation"})
			return
		}
		if err := step.Validate(); err != nil {
			ctx.JSON(http.StatusBadRequest, errorJsonResponse(err))
			return
		}

		var outcome scenario.Outcome
		var opErr error
		err := store.withList(ctx.Param("id"), func(runner *scenario.Runner) error {
			outcome, opErr = runner.Apply(step)
			return nil
		})
		if err != nil {
			ctx.JSON(http.StatusNotFound, errorJsonResponse(err))
			return
		}

		resultTag := "ok"
		status := http.StatusOK
		resp := opResponse{Status: "ok", Outcome: outcome}
		if opErr != nil {
			resultTag = scenario.ErrorName(opErr)
			if resultTag == "" {
				resultTag = "expectation"
			}
			status = http.StatusConflict
			if errors.Is(opErr, dlist.ErrCorrupted) {
				log.Error().Err(opErr).Msgf("List %s corrupted by %s", ctx.Param("id"), step.Op)
				status = http.StatusInternalServerError
			}
			resp = opResponse{Error: opErr.Error(), ErrorName: scenario.ErrorName(opErr), Outcome: outcome}
		}
		log.Debug().Str("list", ctx.Param("id")).Str("op", step.Op).Str("result", resultTag).Msg("Applied operation")
		if statsdClient != nil {
			tags := []string{"op:" + strings.ToLower(step.Op), "result:" + resultTag}
			_ = statsdClient.Incr("ops", tags, 1.0)
		}
		ctx.JSON(status, resp)
	}
}
