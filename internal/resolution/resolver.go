package resolution

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "answer-bot/internal/common/errors"
	"answer-bot/internal/common/logger"
	"answer-bot/internal/common/metrics"
	"answer-bot/internal/models"
)

const tracerName = "answer-bot/resolution"

// Transport executes one outbound request.
type Transport interface {
	Send(ctx context.Context, spec *models.RequestSpec) (models.RawResponse, error)
}

// Recorder receives one sample per finished resolution.
type Recorder interface {
	RecordResolution(ctx context.Context, strategy, outcome string, duration time.Duration)
}

// Outcome is the detailed result of a resolution. Answer is always set.
type Outcome struct {
	Answer string
	// Found is true when the backend (or the echo strategy) produced the
	// answer, false when the fallback or a diagnostic was used.
	Found bool
	// Stage names the failing pipeline stage; empty unless Err is set.
	Stage string
	Err   error
}

// Resolver composes Build, Transport.Send and Extractor into one call. It
// holds no per-call state and is safe for concurrent use.
type Resolver struct {
	config    Config
	transport Transport
	extractor *Extractor
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
	recorder  Recorder
	tracer    trace.Tracer
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRecorder forwards resolution samples to rec in addition to the
// prometheus collectors.
func WithRecorder(rec Recorder) ResolverOption {
	return func(r *Resolver) { r.recorder = rec }
}

// WithTracer sets the tracer used for resolution spans.
func WithTracer(t trace.Tracer) ResolverOption {
	return func(r *Resolver) { r.tracer = t }
}

func NewResolver(cfg Config, transport Transport, log logger.Logger, opts ...ResolverOption) *Resolver {
	cfg.Intents = cfg.intents()

	log = log.With(map[string]interface{}{
		"component": "resolver",
		"strategy":  string(cfg.Strategy),
	})

	r := &Resolver{
		config:    cfg,
		transport: transport,
		extractor: NewExtractor(cfg.Intents),
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Strategy returns the strategy this pipeline instance was built for.
func (r *Resolver) Strategy() models.Strategy {
	return r.config.Strategy
}

// Resolve returns the answer for utterance. It never fails: pipeline errors
// become a diagnostic answer and missing answers become the fallback.
func (r *Resolver) Resolve(ctx context.Context, utterance string, opts Options) string {
	return r.ResolveOutcome(ctx, utterance, opts).Answer
}

// ResolveOutcome is Resolve with the classification of the result.
func (r *Resolver) ResolveOutcome(ctx context.Context, utterance string, opts Options) (out Outcome) {
	strategy := r.config.Strategy
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "resolution.resolve", trace.WithAttributes(
		attribute.String("strategy", string(strategy)),
	))

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic during resolution: %v", p)
			out = r.fail(err, utterance)
		}
		r.observe(ctx, span, out, time.Since(start))
	}()

	if strategy == models.StrategyEcho {
		return Outcome{Answer: EchoAnswer(utterance), Found: true}
	}

	spec, err := r.build(ctx, strategy, utterance, opts)
	if err != nil {
		return r.fail(err, utterance)
	}

	raw, err := r.send(ctx, spec)
	if err != nil {
		return r.fail(err, utterance)
	}

	answer, found := r.extractor.Lookup(raw, strategy)
	if !found {
		answer = r.config.FallbackFor(opts)
	}

	r.logger.Debug("answer resolved", map[string]interface{}{
		"found": found,
	})

	return Outcome{Answer: answer, Found: found}
}

func (r *Resolver) build(ctx context.Context, strategy models.Strategy, utterance string, opts Options) (*models.RequestSpec, error) {
	_, span := r.tracer.Start(ctx, "resolution.build")
	defer span.End()

	spec, err := Build(r.config, strategy, utterance, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
	}
	return spec, err
}

func (r *Resolver) send(ctx context.Context, spec *models.RequestSpec) (models.RawResponse, error) {
	ctx, span := r.tracer.Start(ctx, "resolution.send", trace.WithAttributes(
		attribute.String("http.host", spec.Host),
	))
	defer span.End()

	raw, err := r.transport.Send(ctx, spec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
	}
	return raw, err
}

func (r *Resolver) fail(err error, utterance string) Outcome {
	stdErr := r.errors.Normalize(err)
	return Outcome{
		Answer: r.errors.HandleResolutionError(stdErr, string(r.config.Strategy), utterance),
		Stage:  apperrors.Stage(stdErr.Code),
		Err:    stdErr,
	}
}

func (r *Resolver) observe(ctx context.Context, span trace.Span, out Outcome, elapsed time.Duration) {
	strategy := string(r.config.Strategy)

	outcome := metrics.OutcomeAnswered
	switch {
	case out.Err != nil:
		outcome = metrics.OutcomeDiagnostic
		metrics.AnswerResolutionFailures.WithLabelValues(strategy, out.Stage).Inc()
		span.SetStatus(codes.Error, out.Stage)
	case !out.Found:
		outcome = metrics.OutcomeFallback
	}

	metrics.AnswerResolutions.WithLabelValues(strategy, outcome).Inc()
	metrics.AnswerResolutionDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	if r.recorder != nil {
		r.recorder.RecordResolution(ctx, strategy, outcome, elapsed)
	}

	span.SetAttributes(attribute.String("outcome", outcome))
	span.End()
}

// EchoAnswer is the reply of the echo strategy.
func EchoAnswer(utterance string) string {
	return "Echo: " + utterance
}
