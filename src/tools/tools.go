// Package tools wraps the external capabilities the assistant can consult:
// web search, place search and route directions.
//
// Every adapter honours the same contract: Invoke never fails. Missing
// credentials, transport errors and empty result sets come back as
// human-readable text so the caller can hand them to the language model
// like any other tool output.
package tools

import (
	"context"
	"errors"
)

// Tool names double as intent labels.
const (
	NameWebSearch   = "web_search"
	NamePlaceSearch = "place_search"
	NameDirections  = "directions"
)

var (
	// ErrMissingCredential marks an adapter disabled at startup for lack of an API key.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvocationFailed wraps transport and backend failures.
	ErrInvocationFailed = errors.New("tool invocation failed")
)

// Status classifies the outcome of an invocation.
type Status string

const (
	StatusOK                Status = "ok"
	StatusEmpty             Status = "empty"
	StatusMissingCredential Status = "missing_credential"
	StatusFailed            Status = "failed"
	StatusBadRequest        Status = "bad_request"
)

// Spec describes a tool to operators and to UTCP consumers.
type Spec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// Request is the closed set of structured tool inputs.
type Request interface {
	ToolName() string
}

// WebSearchRequest queries a general web search engine.
type WebSearchRequest struct {
	Query      string
	MaxResults int
}

// PlaceSearchRequest looks up venues. Location is either a "lat,lng" pair
// or a free-text place name; Radius is in meters.
type PlaceSearchRequest struct {
	Query    string
	Location string
	Radius   uint
}

// DirectionsRequest asks for the best route between two places.
type DirectionsRequest struct {
	Origin      string
	Destination string
	Mode        string
}

func (WebSearchRequest) ToolName() string   { return NameWebSearch }
func (PlaceSearchRequest) ToolName() string { return NamePlaceSearch }
func (DirectionsRequest) ToolName() string  { return NameDirections }

// Response is the text produced by a tool plus its outcome class.
type Response struct {
	Content string
	Status  Status
}

// Tool exposes metadata and an invocation handler that never fails.
type Tool interface {
	Spec() Spec
	Invoke(ctx context.Context, req Request) Response
}

func ok(content string) Response {
	return Response{Content: content, Status: StatusOK}
}

func empty(content string) Response {
	return Response{Content: content, Status: StatusEmpty}
}

func missing(content string) Response {
	return Response{Content: content, Status: StatusMissingCredential}
}

func failed(content string) Response {
	return Response{Content: content, Status: StatusFailed}
}

func badRequest(tool string, req Request) Response {
	name := "<nil>"
	if req != nil {
		name = req.ToolName()
	}
	return Response{
		Content: "Error: " + tool + " cannot handle a " + name + " request.",
		Status:  StatusBadRequest,
	}
}
