package events

import (
	"time"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// OperationStart is emitted before an executor sends a document.
type OperationStart struct {
	Endpoint string
	Kind     string // query or mutation
	Names    []string
	Document string
}

// OperationFinish is emitted after the response was dispatched or the call
// failed.
type OperationFinish struct {
	Endpoint     string
	Kind         string
	Names        []string
	Err          error
	ServerErrors gqlerror.List
	Deliveries   int
	Duration     time.Duration
}

// DispatchFinish is emitted once per operation after its callbacks ran, or
// after its segment failed to decode.
type DispatchFinish struct {
	Name       string
	Deliveries int
	Err        error
}
