// Package engine is the group lifecycle and fund-rotation engine.
//
// Every mutating operation runs as one storage transaction: the group record
// is loaded, validated against the status machine, any external transfer is
// made, and the complete updated records are written. If the transaction does
// not commit, transfers made inside it are reversed, so a payout or
// contribution is never recorded without its transfer and vice versa.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/xoulomon/stellarsave/internal/errors"
	"github.com/xoulomon/stellarsave/internal/events"
	"github.com/xoulomon/stellarsave/internal/models"
	"github.com/xoulomon/stellarsave/internal/storage"
)

const tracerName = "github.com/xoulomon/stellarsave/internal/engine"

// Config holds the engine's collaborators.
type Config struct {
	Store      storage.Store
	Transferer Transferer
	Authorizer Authorizer

	// Custody is the account that holds pooled contributions.
	Custody string

	// Optional; default to the system clock, a discarding emitter,
	// slog.Default() and the global tracer provider.
	Clock          Clock
	Emitter        events.Emitter
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
}

// Engine orchestrates group creation, membership, contributions, payouts
// and cancellation.
type Engine struct {
	store     storage.Store
	transfers Transferer
	auth      Authorizer
	custody   string
	clock     Clock
	emitter   events.Emitter
	logger    *slog.Logger
	tracer    trace.Tracer
}

// New validates cfg and returns an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("engine: store is required")
	}
	if cfg.Transferer == nil {
		return nil, errors.New("engine: transferer is required")
	}
	if cfg.Authorizer == nil {
		return nil, errors.New("engine: authorizer is required")
	}
	if cfg.Custody == "" {
		return nil, errors.New("engine: custody account is required")
	}

	e := &Engine{
		store:     cfg.Store,
		transfers: cfg.Transferer,
		auth:      cfg.Authorizer,
		custody:   cfg.Custody,
		clock:     cfg.Clock,
		emitter:   cfg.Emitter,
		logger:    cfg.Logger,
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	e.tracer = tp.Tracer(tracerName)
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.emitter == nil {
		e.emitter = events.Discard
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// Custody returns the account holding pooled funds.
func (e *Engine) Custody() string {
	return e.custody
}

func (e *Engine) now() int64 {
	return e.clock.Now().Unix()
}

func (e *Engine) emit(ctx context.Context, evt events.Event) {
	e.emitter.Emit(ctx, evt)
}

func (e *Engine) event(name events.Name, groupID uint64, actor string) events.Event {
	return events.New(name, groupID, actor, e.clock.Now())
}

// startSpan opens a span for one engine operation.
func (e *Engine) startSpan(ctx context.Context, op string, groupID uint64) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{}
	if groupID != 0 {
		attrs = append(attrs, attribute.Int64("group.id", int64(groupID)))
	}
	return e.tracer.Start(ctx, "engine."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.code", apperrors.GetCode(err).String()))
	}
	span.End()
}

// requireAuth runs the authorizer and normalizes its failure to Unauthorized.
func (e *Engine) requireAuth(ctx context.Context, principal string) error {
	if principal == "" {
		return apperrors.ErrUnauthorized.With("reason", "empty principal")
	}
	if err := e.auth.RequireAuth(ctx, principal); err != nil {
		if apperrors.GetCode(err) != apperrors.CodeUnknown {
			return err
		}
		return apperrors.Wrap(apperrors.CodeUnauthorized, "caller is not authorized", err).With("principal", principal)
	}
	return nil
}

// requireAdmin checks that caller is authenticated and administers g.
func (e *Engine) requireAdmin(ctx context.Context, caller string, g *models.Group) error {
	if caller != g.Admin {
		return apperrors.ErrUnauthorized.With("principal", caller).With("group_id", groupIDString(g.ID))
	}
	return e.requireAuth(ctx, caller)
}

// loadGroup maps a missing record to GroupNotFound.
func loadGroup(ctx context.Context, r storage.Reader, groupID uint64) (*models.Group, error) {
	g, err := storage.LoadGroup(ctx, r, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.ErrGroupNotFound.With("group_id", groupIDString(groupID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	return g, nil
}

// transitionError reports an illegal status change as InvalidGroupStatus.
func transitionError(groupID uint64, from, to models.GroupStatus) error {
	cause := models.ValidateTransition(from, to)
	if cause == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.CodeInvalidGroupStatus, "status transition not allowed", cause).
		With("group_id", groupIDString(groupID)).
		With("from", from.String()).
		With("to", to.String())
}

func groupIDString(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// transfer is one completed external movement of funds.
type transfer struct {
	from, to string
	amount   int64
}

// journal records the transfers made inside one transaction.
type journal struct {
	e    *Engine
	done []transfer
}

// Transfer moves funds and remembers the movement for reversal.
func (j *journal) Transfer(ctx context.Context, from, to string, amount int64) error {
	if err := j.e.transfers.Transfer(ctx, from, to, amount); err != nil {
		return err
	}
	j.done = append(j.done, transfer{from: from, to: to, amount: amount})
	return nil
}

// update runs fn in a storage transaction. When the transaction fails after
// fn moved funds, every transfer is reversed in the opposite order.
func (e *Engine) update(ctx context.Context, fn func(rw storage.ReadWriter, j *journal) error) error {
	j := &journal{e: e}
	err := e.store.Update(ctx, func(rw storage.ReadWriter) error {
		return fn(rw, j)
	})
	if err != nil && len(j.done) > 0 {
		e.reverse(ctx, j.done, err)
	}
	return err
}

func (e *Engine) reverse(ctx context.Context, done []transfer, cause error) {
	// The original context may be what failed the commit.
	ctx = context.WithoutCancel(ctx)
	for i := len(done) - 1; i >= 0; i-- {
		t := done[i]
		if err := e.transfers.Transfer(ctx, t.to, t.from, t.amount); err != nil {
			e.logger.ErrorContext(ctx, "Failed to reverse transfer after aborted commit",
				"from", t.to,
				"to", t.from,
				"amount", t.amount,
				"cause", cause,
				"error", err,
			)
			continue
		}
		e.logger.WarnContext(ctx, "Reversed transfer after aborted commit",
			"from", t.to,
			"to", t.from,
			"amount", t.amount,
			"cause", cause,
		)
	}
}
