package monitor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payments-gateway/internal/monitor"
)

const schema = `{
	"type": "object",
	"properties": {
		"payment_method_id": {"type": "string", "minLength": 1},
		"manual_capture": {"type": "boolean"}
	},
	"required": ["payment_method_id"],
	"additionalProperties": false
}`

func TestNewContractMonitorRejectsBadSchema(t *testing.T) {
	_, err := monitor.NewContractMonitor([]byte(`{"type": 42}`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cm, err := monitor.NewContractMonitor([]byte(schema))
	require.NoError(t, err)

	t.Run("valid body", func(t *testing.T) {
		valid, errs, err := cm.Validate([]byte(`{"payment_method_id": "pm_1", "manual_capture": true}`))
		require.NoError(t, err)
		assert.True(t, valid)
		assert.Empty(t, errs)
	})

	t.Run("missing required field", func(t *testing.T) {
		valid, errs, err := cm.Validate([]byte(`{"manual_capture": true}`))
		require.NoError(t, err)
		assert.False(t, valid)
		assert.NotEmpty(t, errs)
	})

	t.Run("unknown field", func(t *testing.T) {
		valid, errs, err := cm.Validate([]byte(`{"payment_method_id": "pm_1", "amount": 100}`))
		require.NoError(t, err)
		assert.False(t, valid)
		assert.NotEmpty(t, errs)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, _, err := cm.Validate([]byte(`{not json`))
		assert.Error(t, err)
	})
}

func TestFormatErrors(t *testing.T) {
	assert.Empty(t, monitor.FormatErrors(nil))
	assert.Contains(t, monitor.FormatErrors([]string{"a", "b"}), "a; b")
}
