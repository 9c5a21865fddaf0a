package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
)

type instrumented struct {
	next    UserRepository
	backend string
	m       *metrics.Metrics
}

// Instrument records count and latency of every store operation
func Instrument(next UserRepository, backend string, m *metrics.Metrics) UserRepository {
	if m == nil {
		return next
	}
	return &instrumented{next: next, backend: backend, m: m}
}

func (r *instrumented) observe(op string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrDuplicateID):
		status = "conflict"
	case err != nil:
		status = "error"
	}
	r.m.StoreOperations.WithLabelValues(r.backend, op, status).Inc()
	r.m.StoreLatency.WithLabelValues(r.backend, op).Observe(time.Since(start).Seconds())
}

func (r *instrumented) Load(ctx context.Context, id string) (u *model.User, err error) {
	defer func(start time.Time) { r.observe("load", start, err) }(time.Now())
	return r.next.Load(ctx, id)
}

func (r *instrumented) Save(ctx context.Context, user *model.User) (err error) {
	defer func(start time.Time) { r.observe("save", start, err) }(time.Now())
	return r.next.Save(ctx, user)
}

func (r *instrumented) Create(ctx context.Context, user *model.User) (err error) {
	defer func(start time.Time) { r.observe("create", start, err) }(time.Now())
	return r.next.Create(ctx, user)
}

func (r *instrumented) FindByEmail(ctx context.Context, email string) (u *model.User, err error) {
	defer func(start time.Time) { r.observe("find_by_email", start, err) }(time.Now())
	return r.next.FindByEmail(ctx, email)
}

func (r *instrumented) List(ctx context.Context) (users []*model.User, err error) {
	defer func(start time.Time) { r.observe("list", start, err) }(time.Now())
	return r.next.List(ctx)
}

func (r *instrumented) Ping(ctx context.Context) error { return r.next.Ping(ctx) }

func (r *instrumented) Close() error { return r.next.Close() }
