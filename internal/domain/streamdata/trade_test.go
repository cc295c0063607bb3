package streamdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTradeFields(t *testing.T) {
	t.Run("payloads pass through untouched", func(t *testing.T) {
		confirm := `{"dealReference":"ABC123","dealStatus":"ACCEPTED"}`
		fields, err := DecodeTradeFields(map[string]string{
			"CONFIRMS": confirm,
			"OPU":      `{"dealId":"DI-1"}`,
		})
		require.NoError(t, err)

		require.NotNil(t, fields.Confirms)
		assert.Equal(t, confirm, *fields.Confirms)
		require.NotNil(t, fields.OpenPositionUpdate)
		assert.Equal(t, `{"dealId":"DI-1"}`, *fields.OpenPositionUpdate)
		assert.Nil(t, fields.WorkingOrderUpdate)
	})

	t.Run("empty payload is preserved, only absence maps to nil", func(t *testing.T) {
		fields, err := DecodeTradeFields(map[string]string{"WOU": ""})
		require.NoError(t, err)

		require.NotNil(t, fields.WorkingOrderUpdate)
		assert.Equal(t, "", *fields.WorkingOrderUpdate)
		assert.Nil(t, fields.Confirms)
		assert.Nil(t, fields.OpenPositionUpdate)
	})
}

func TestDecodeTradeUpdate(t *testing.T) {
	update, err := DecodeTradeUpdate(
		"TRADE:Z53PW1",
		1,
		map[string]string{"CONFIRMS": `{"dealStatus":"REJECTED"}`},
		map[string]string{"CONFIRMS": `{"dealStatus":"REJECTED"}`},
		false,
	)
	require.NoError(t, err)

	assert.Equal(t, "TRADE:Z53PW1", update.Item)
	assert.False(t, update.Snapshot)
	require.NotNil(t, update.Fields.Confirms)
	require.NotNil(t, update.ChangedFields.Confirms)
	assert.Equal(t, *update.Fields.Confirms, *update.ChangedFields.Confirms)
}
