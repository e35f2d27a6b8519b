// Package executor sends selection trees to a GraphQL endpoint and routes the
// response back through them.
//
// # Overview
//
// An Executor owns an endpoint address, a Transport and a small set of
// request hooks. One call to Execute issues exactly one HTTP request carrying
// one document that may batch several top-level Operations:
//
//	op, _ := selection.NewOperation(s.GetQueryType(),
//		selection.Object("user",
//			selection.Leaf("id", selection.Value(func(id string) { ... })),
//			selection.Leaf("name", selection.Value(func(name string) { ... })),
//		).WithArgs(map[string]any{"id": "1"}))
//	res, err := exec.Query(ctx, op)
//
// # Request Cycle
//
// Execute performs, in order:
//  1. Validation: the kind must be query or mutation, at least one operation
//     must be given and operation names must be unique. The endpoint must be
//     an absolute http or https URL. Failures return SchemaViolation or
//     InvalidEndpoint before anything is sent.
//  2. Serialization of all operations into one document (package document).
//  3. Request construction with the RequestBuilder, followed by the optional
//     RequestEditor. Each is called at most once per Execute.
//  4. Transport.Send. Any failure, including cancellation of ctx, returns
//     RequestFailed.
//  5. Envelope parsing. A body that is not a JSON object returns
//     MalformedResponse. A missing or null "data" member is tolerated and
//     dispatches nothing. The "errors" member is decoded into Result.Errors
//     and never interpreted.
//  6. Dispatch of data.<name> for every operation in declaration order
//     (package dispatch).
//
// # Partial Dispatch
//
// Each operation is decoded completely before any of its callbacks run, so a
// malformed segment fires none of its callbacks. Operations dispatched
// earlier in the same call have already run and are not undone; the error
// names the path of the offending field.
//
// # Observability
//
// Execute publishes events.OperationStart, events.DispatchFinish (per
// operation) and events.OperationFinish on the global event bus. A request ID
// is placed in the context when the caller did not provide one, so that the
// transport's events and headers can be correlated with the operation.
package executor
