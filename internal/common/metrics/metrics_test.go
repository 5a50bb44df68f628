package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorsAreRegistered(t *testing.T) {
	before := testutil.ToFloat64(AnswerResolutions.WithLabelValues("echo", OutcomeAnswered))
	AnswerResolutions.WithLabelValues("echo", OutcomeAnswered).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AnswerResolutions.WithLabelValues("echo", OutcomeAnswered)))

	WorkerJobsFailed.WithLabelValues("resolve-answer", "INVALID_JOB_VARIABLES").Inc()
	assert.GreaterOrEqual(t, testutil.CollectAndCount(WorkerJobsFailed), 1)
}
