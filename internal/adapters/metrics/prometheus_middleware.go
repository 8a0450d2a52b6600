package metrics

import (
	"context"
	"time"

	"github.com/andrescamacho/placement-go/internal/application/mediator"
)

// PrometheusMiddleware times every request and counts it by outcome. A
// response the rules turned down, such as a rejected PlaceUnitsCommand,
// counts as rejected rather than success.
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		collector.inFlight.Inc()
		defer collector.inFlight.Dec()

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(mediator.RequestName(request), time.Since(start).Seconds(), outcome(response, err))
		return response, err
	}
}

func outcome(response mediator.Response, err error) string {
	switch {
	case err != nil:
		return StatusError
	case mediator.Rejected(response):
		return StatusRejected
	default:
		return StatusSuccess
	}
}
