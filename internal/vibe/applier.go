package vibe

import (
	"context"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/colonyops/vibeplanner/internal/core/review"
	"github.com/rs/zerolog"
)

// Applier reconciles confirmed items against the actor's team records.
type Applier struct {
	records *RecordService
	actor   Actor
	log     zerolog.Logger
}

var _ review.Applier = (*Applier)(nil)

// NewApplier creates an Applier acting as actor.
func NewApplier(svc *RecordService, actor Actor, log zerolog.Logger) *Applier {
	return &Applier{
		records: svc,
		actor:   actor,
		log:     log.With().Str("component", "applier").Logger(),
	}
}

// Apply dispatches on (type, operation). Single-target items return an
// error when the call fails. Bulk items call once per target, continue past
// failures, and report each outcome in the result.
func (a *Applier) Apply(ctx context.Context, item proposal.Item) (review.Result, error) {
	kind := records.Kind(item.Type)
	if !kind.Valid() {
		verr := &records.ValidationError{Kind: kind}
		verr.Add("type", "unsupported record type %q", item.RawType)
		return review.Result{}, verr
	}

	targets := item.Targets()
	if len(targets) == 0 {
		verr := &records.ValidationError{Kind: kind}
		verr.Add("data", "nothing to apply")
		return review.Result{}, verr
	}

	if !item.Operation.IsBulk() {
		res := a.applyTarget(ctx, item.Operation, kind, targets[0])
		if res.Err != nil {
			return review.Result{}, res.Err
		}
		return review.Result{Targets: []review.TargetResult{res}}, nil
	}

	out := review.Result{Targets: make([]review.TargetResult, 0, len(targets))}
	for _, t := range targets {
		res := a.applyTarget(ctx, item.Operation, kind, t)
		if res.Err != nil {
			a.log.Debug().Ctx(ctx).Err(res.Err).Str("target", t.Key).Msg("bulk target failed")
		}
		out.Targets = append(out.Targets, res)
	}
	return out, nil
}

func (a *Applier) applyTarget(ctx context.Context, op proposal.Operation, kind records.Kind, t proposal.Target) review.TargetResult {
	res := review.TargetResult{Key: t.Key, Title: t.Title}

	var (
		rec records.Record
		err error
	)
	switch op {
	case proposal.OpCreate, proposal.OpBulkCreate:
		rec, err = a.records.Create(ctx, a.actor, kind, t.Fields)
	case proposal.OpEdit, proposal.OpBulkEdit:
		rec, err = a.records.Update(ctx, a.actor, kind, t.ID, t.Fields, t.Version)
	case proposal.OpDelete:
		rec, err = a.records.Delete(ctx, a.actor, kind, t.ID)
	default:
		verr := &records.ValidationError{Kind: kind}
		verr.Add("operation", "unsupported operation %q", string(op))
		err = verr
	}

	res.RecordID = rec.ID
	res.Err = err
	if res.Title == "" {
		res.Title = rec.Title
	}
	return res
}
