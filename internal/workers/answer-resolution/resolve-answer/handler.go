package resolveanswer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "answer-bot/internal/common/errors"
	"answer-bot/internal/common/metrics"
	"answer-bot/internal/common/validation"
	"answer-bot/internal/models"
	"answer-bot/internal/resolution"
)

const (
	TaskType = "resolve-answer"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// AnswerSource is satisfied by *resolution.Resolver.
type AnswerSource interface {
	ResolveOutcome(ctx context.Context, utterance string, opts resolution.Options) resolution.Outcome
	Strategy() models.Strategy
}

type Handler struct {
	config    *Config
	answers   AnswerSource
	validator *validation.Validator
	logger    Logger
}

func NewHandler(config *Config, answers AnswerSource, log Logger) *Handler {
	return &Handler{
		config:    config,
		answers:   answers,
		validator: validation.MustNewValidator(validation.ResolveAnswerVariablesSchema),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := h.decodeInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// decodeInput validates the raw job variables before decoding them.
func (h *Handler) decodeInput(variables string) (*Input, error) {
	if result := h.validator.ValidateJSON([]byte(variables)); !result.Valid {
		return nil, apperrors.NewInvalidJobVariablesError(fmt.Errorf("%s", result.Error()))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidJobVariablesError(fmt.Errorf("parse input: %w", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidJobVariablesError(fmt.Errorf("input is required"))
	}

	correlationID := input.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	out := h.answers.ResolveOutcome(ctx, input.Utterance, resolution.Options{
		DeploymentName: input.DeploymentName,
		Language:       input.Language,
		CorrelationID:  correlationID,
		Fallback:       input.Fallback,
	})

	strategy := string(h.answers.Strategy())
	h.logger.Info("answer resolved", map[string]interface{}{
		"strategy":      strategy,
		"found":         out.Found,
		"stage":         out.Stage,
		"correlationId": correlationID,
	})

	return &Output{
		Answer:        out.Answer,
		Found:         out.Found,
		Strategy:      strategy,
		CorrelationID: correlationID,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	bpmnErr := apperrors.ConvertToBPMNError(apperrors.NewErrorHandler(h.logger).Normalize(err))

	fields := bpmnErr.ToErrorVariables()
	fields["jobKey"] = job.Key
	fields["retries"] = bpmnErr.Retries
	h.logger.Error("job failed", fields)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(bpmnErr.Retries)).
		ErrorMessage(bpmnErr.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// DecodeInput exposes the job variable decoding used by Handle.
func (h *Handler) DecodeInput(variables string) (*Input, error) {
	return h.decodeInput(variables)
}
