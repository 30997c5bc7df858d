package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMetrics(t *testing.T) {
	logger := zap.NewNop()
	m := New(logger)

	assert.NotNil(t, m)

	// Запись метрик не должна паниковать
	m.RecordSynthesis(true, 1.5)
	m.RecordSynthesis(false, 0.2)
	m.RecordValidationFailure("too_short")
	m.RecordDownload()
	m.SetVoicesAvailable(11)
}

func TestMetricsNilSafe(t *testing.T) {
	// Нулевой указатель должен быть безопасен
	var m *Metrics
	m.RecordSynthesis(true, 1.0)
	m.RecordValidationFailure("empty_input")
	m.RecordDownload()
	m.SetVoicesAvailable(0)
}
