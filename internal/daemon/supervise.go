package daemon

import (
	"context"
	"errors"
	"log/slog"

	"github.com/thejerf/suture/v4"
)

// eventHook logs supervisor events through logger.
func eventHook(logger *slog.Logger) suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			logger.Warn("service failed to terminate in a timely manner", "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventServicePanic:
			logger.Error("service panic", "service", e.ServiceName, "panic", e.PanicMsg, "stack", e.Stacktrace)
		case suture.EventServiceTerminate:
			logger.Error("service failed", "error", e.Err, "supervisor", e.SupervisorName, "service", e.ServiceName, "restarting", e.Restarting)
		case suture.EventBackoff:
			logger.Warn("too many service failures, backing off", "supervisor", e.SupervisorName)
		case suture.EventResume:
			logger.Info("exiting backoff state", "supervisor", e.SupervisorName)
		default:
			logger.Debug("supervisor event", "type", int(ei.Type()))
		}
	}
}

// service is a named suture service.
type service struct {
	name string
	fn   func(ctx context.Context) error
}

func newService(name string, fn func(ctx context.Context) error) service {
	return service{name: name, fn: fn}
}

func (s service) String() string {
	return s.name
}

func (s service) Serve(ctx context.Context) error {
	return sanitizeError(ctx, s.fn(ctx))
}

// sanitizeError keeps a service's own timeout errors from reading as a
// context error, which suture treats as a request to stop the service.
func sanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}

	var errs []error
	if errors.Is(err, suture.ErrDoNotRestart) {
		errs = append(errs, suture.ErrDoNotRestart)
	}
	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
		errs = append(errs, suture.ErrTerminateSupervisorTree)
	}
	errs = append(errs, errors.New(err.Error()))
	return errors.Join(errs...)
}
