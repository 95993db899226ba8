package web_server

import (
	"github.com/gin-gonic/gin"

	"github.com/getsentry/go-dlist/scenario"
)

// createListResponse is returned when a new list is created
type createListResponse struct {
	Id string `json:"id"`
}

type listsResponse struct {
	Lists []string `json:"lists"`
}

// listResponse describes the current contents of a list
type listResponse struct {
	Id     string `json:"id"`
	Size   int    `json:"size"`
	Values []int  `json:"values"`
}

// opResponse is the result of applying an operation to a list.
//
// On failure Error holds the message and ErrorName the short name of the
// error (e.g. "empty", "outOfRange") when there is one.
type opResponse struct {
	Status    string           `json:"status,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorName string           `json:"errorName,omitempty"`
	Outcome   scenario.Outcome `json:"outcome"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorName string `json:"errorName,omitempty"`
}

func okJsonResponse() interface{} {
	return gin.H{"status": "ok"}
}

func errorJsonResponse(err error) errorResponse {
	return errorResponse{Error: err.Error(), ErrorName: scenario.ErrorName(err)}
}
