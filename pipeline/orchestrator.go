/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chainguard.dev/crisiseval/agents/agenttrace"
	"chainguard.dev/crisiseval/agents/judge"
	"chainguard.dev/crisiseval/evaluation"
	"chainguard.dev/crisiseval/rubric"
	"chainguard.dev/crisiseval/storage"
	"chainguard.dev/crisiseval/transcript"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chainguard.crisiseval.pipeline"

// Request names the transcript to evaluate. Location takes precedence over
// Notification, which takes precedence over the configured default.
type Request struct {
	Location     *storage.Location `json:"location,omitempty"`
	Notification json.RawMessage   `json:"notification,omitempty"`
}

// Orchestrator runs evaluations. It is immutable after New.
type Orchestrator struct {
	store  storage.Store
	judge  judge.Interface
	rubric *rubric.Rubric

	model        string
	outputBucket string
	keys         KeyMapping
	defaultInput *storage.Location
	observer     func(State)
}

// New creates an Orchestrator around injected storage, judge and rubric.
func New(store storage.Store, j judge.Interface, r *rubric.Rubric, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if j == nil {
		return nil, errors.New("judge is required")
	}
	if r == nil {
		return nil, errors.New("rubric is required")
	}

	o := &Orchestrator{
		store:  store,
		judge:  j,
		rubric: r,
		keys:   DefaultKeyMapping,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return o, nil
}

// run carries the state of one evaluation.
type run struct {
	id         string
	input      storage.Location
	output     storage.Location
	completion Completion
}

// Run evaluates one transcript. On failure the returned Completion has
// status FAILURE and the error identifies the stage. Nothing is persisted
// unless every stage before Persisting succeeded.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Completion, error) {
	start := time.Now()
	r := &run{id: uuid.NewString()}
	r.completion = Completion{RunID: r.id, Status: StatusFailure}

	log := clog.FromContext(ctx).With("run_id", r.id)
	ctx = clog.WithLogger(ctx, log)

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "pipeline.run",
		oteltrace.WithAttributes(attribute.String("run_id", r.id)))
	defer span.End()

	err := o.execute(ctx, r, req)

	status := string(r.completion.Status)
	durationHistogram.WithLabelValues(status).Observe(time.Since(start).Seconds())
	runsCounter.WithLabelValues(status, o.rubric.Version).Inc()

	if err != nil {
		state := FailedState(err)
		stageFailures.WithLabelValues(state.String()).Inc()
		o.enter(ctx, Failed)
		span.RecordError(err)
		span.SetStatus(codes.Error, state.String())
		clog.FromContext(ctx).With("state", state.String()).Errorf("Evaluation failed: %v", err)
		return &r.completion, err
	}

	span.SetStatus(codes.Ok, "")
	return &r.completion, nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run, req Request) error {
	input, err := o.resolve(ctx, req)
	if err != nil {
		return err
	}
	r.input = input
	r.output = storage.Location{Bucket: input.Bucket, Key: o.keys.OutputKey(input.Key)}
	if o.outputBucket != "" {
		r.output.Bucket = o.outputBucket
	}
	r.completion.Bucket = input.Bucket
	r.completion.InputKey = input.Key

	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("bucket", input.Bucket, "key", input.Key))
	ctx = agenttrace.WithRunContext(ctx, agenttrace.RunContext{
		RunID:         r.id,
		Bucket:        input.Bucket,
		Key:           input.Key,
		RubricVersion: o.rubric.Version,
	})
	oteltrace.SpanFromContext(ctx).SetAttributes(
		attribute.String("bucket", input.Bucket),
		attribute.String("key", input.Key),
	)

	o.enter(ctx, Fetching)
	t, err := o.fetch(ctx, input)
	if err != nil {
		return err
	}

	o.enter(ctx, Building)
	prompt, err := evaluation.BuildPrompt(o.rubric, t)
	if err != nil {
		return &StageError{State: Building, Cause: err}
	}

	o.enter(ctx, Judging)
	raw, err := o.judge.Invoke(ctx, prompt.Instruction, prompt.Content)
	if err != nil {
		model := o.model
		var ie *judge.InvocationError
		if errors.As(err, &ie) {
			model = ie.Model
		}
		return &JudgeInvocationError{Model: model, Cause: err}
	}

	o.enter(ctx, Validating)
	outcome := evaluation.Validate(raw, o.rubric, t)

	o.enter(ctx, Aggregating)
	var result *evaluation.EvaluationResult
	switch out := outcome.(type) {
	case *evaluation.Scored:
		result = evaluation.Aggregate(out.Criteria, o.rubric)
		if len(out.Ignored) > 0 {
			clog.FromContext(ctx).With("keys", out.Ignored).Warnf("Ignored %d keys the rubric does not define", len(out.Ignored))
		}
		clog.FromContext(ctx).With("method", out.Method).Debugf("Scores:\n%s", evaluation.RenderSummary(result))
	case *evaluation.Degraded:
		clog.FromContext(ctx).With("reason", out.Reason).Warn("Judge output held no JSON object, persisting degraded result")
	}

	o.enter(ctx, Persisting)
	// A cancelled run must not leave a partial artifact behind.
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Location: r.output, Cause: err}
	}
	doc, err := evaluation.Document(outcome, result)
	if err != nil {
		return &StageError{State: Persisting, Cause: err}
	}
	if err := o.store.Put(ctx, r.output, doc, evaluation.ContentType); err != nil {
		return &PersistenceError{Location: r.output, Cause: err}
	}

	r.completion.Status = StatusSuccess
	r.completion.OutputKey = r.output.Key
	if r.output.Bucket != input.Bucket {
		r.completion.OutputBucket = r.output.Bucket
	}
	if result != nil {
		r.completion.Percentage = result.Percentage
		r.completion.Band = result.Band
		percentageHistogram.WithLabelValues(o.rubric.Version).Observe(result.Percentage)
		unscoredCounter.WithLabelValues(o.rubric.Version).Add(float64(result.Unscored()))
	} else {
		r.completion.Degraded = true
		degradedCounter.WithLabelValues(o.rubric.Version).Inc()
	}

	o.enter(ctx, Done)
	clog.FromContext(ctx).With(
		"output", r.output.String(),
		"degraded", r.completion.Degraded,
		"percentage", r.completion.Percentage,
		"band", r.completion.Band,
	).Info("Evaluation complete")
	return nil
}

// resolve picks the transcript location for a request: the direct location,
// then the notification, then the configured default.
func (o *Orchestrator) resolve(ctx context.Context, req Request) (storage.Location, error) {
	log := clog.FromContext(ctx)
	reason := "request has no location or notification"

	if req.Location != nil {
		if req.Location.Valid() {
			return *req.Location, nil
		}
		reason = fmt.Sprintf("location %q requires bucket and key", req.Location)
		log.Warnf("Ignoring %s", reason)
	}
	if len(bytes.TrimSpace(req.Notification)) > 0 {
		loc, err := ParseNotification(req.Notification)
		if err == nil {
			return loc, nil
		}
		reason = fmt.Sprintf("unusable notification: %v", err)
		log.Warnf("Ignoring notification: %v", err)
	}

	if o.defaultInput != nil {
		return *o.defaultInput, nil
	}
	return storage.Location{}, &InputMissingError{Reason: reason + ", and no default input is configured"}
}

func (o *Orchestrator) fetch(ctx context.Context, loc storage.Location) (*transcript.Transcript, error) {
	data, err := o.store.Get(ctx, loc)
	if err != nil {
		return nil, &RetrievalError{Location: loc, Cause: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &RetrievalError{Location: loc, Cause: ErrEmptyBody}
	}
	t, err := transcript.Decode(data)
	if err != nil {
		return nil, &RetrievalError{Location: loc, Cause: err}
	}
	return t, nil
}

func (o *Orchestrator) enter(ctx context.Context, s State) {
	clog.FromContext(ctx).With("state", s.String()).Debug("Entering state")
	oteltrace.SpanFromContext(ctx).AddEvent(s.String())
	if o.observer != nil {
		o.observer(s)
	}
}
