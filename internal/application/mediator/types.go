package mediator

import (
	"context"
	"reflect"
)

// Request is a placement command or query
type Request interface{}

// Response is what a handler returns for a request
type Response interface{}

// RequestHandler handles one request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc adapts a function to the handler chain
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware wraps every request, e.g. with metrics or the step lock
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// Verdict is implemented by responses that can turn a request down without
// failing it. A placement the rules refuse is a verdict, not an error.
type Verdict interface {
	IsAccepted() bool
}

// Rejected returns true if response is a verdict that refused the request
func Rejected(response Response) bool {
	v, ok := response.(Verdict)
	return ok && !v.IsAccepted()
}

// RequestName returns the request's type name without package or pointer,
// e.g. "PlaceUnitsCommand" for *commands.PlaceUnitsCommand
func RequestName(request Request) string {
	if request == nil {
		return "UnknownRequest"
	}
	t := reflect.TypeOf(request)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
