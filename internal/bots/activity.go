package bots

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "answer-bot/internal/common/errors"
	"answer-bot/internal/common/validation"
	"answer-bot/internal/models"
)

const maxActivityBytes = 1 << 20

// ActivityHandler handles incoming Bot Framework activities.
type ActivityHandler struct {
	processor *Processor
	validator *validation.Validator
	logger    Logger
}

func NewActivityHandler(processor *Processor, log Logger) *ActivityHandler {
	return &ActivityHandler{
		processor: processor,
		validator: validation.MustNewValidator(validation.ActivitySchema),
		logger:    log,
	}
}

// HandleActivity handles POST /api/messages. Replies are delivered out of
// band through the ReplySender, so a processed activity is acknowledged
// with an empty 200.
func (h *ActivityHandler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxActivityBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if result := h.validator.ValidateJSON(body); !result.Valid {
		stdErr := apperrors.NewInvalidActivityError(result.Error())
		h.logger.Warn("rejecting activity", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		writeError(w, http.StatusBadRequest, stdErr)
		return
	}

	var activity models.Activity
	if err := json.Unmarshal(body, &activity); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.NewInvalidActivityError(err.Error()))
		return
	}

	if err := h.processor.Process(r.Context(), &activity); err != nil {
		stdErr, ok := apperrors.AsStandardError(err)
		if !ok {
			stdErr = apperrors.NewReplySendFailedError(err)
		}
		writeError(w, http.StatusBadGateway, stdErr)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func writeError(w http.ResponseWriter, status int, stdErr *apperrors.StandardError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
	})
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
