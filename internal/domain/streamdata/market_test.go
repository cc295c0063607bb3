package streamdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMarketFields(t *testing.T) {
	t.Run("well-formed numeric values decode exactly", func(t *testing.T) {
		fields, err := DecodeMarketFields(map[string]string{
			"BID":      "100.5",
			"OFFER":    "101.25",
			"HIGH":     "102",
			"LOW":      "99.75",
			"MID_OPEN": "100",
		})
		require.NoError(t, err)

		require.NotNil(t, fields.Bid)
		assert.Equal(t, 100.5, *fields.Bid)
		require.NotNil(t, fields.Offer)
		assert.Equal(t, 101.25, *fields.Offer)
		require.NotNil(t, fields.High)
		assert.Equal(t, 102.0, *fields.High)
		require.NotNil(t, fields.Low)
		assert.Equal(t, 99.75, *fields.Low)
		require.NotNil(t, fields.MidOpen)
		assert.Equal(t, 100.0, *fields.MidOpen)
	})

	t.Run("empty numeric value decodes to no value", func(t *testing.T) {
		fields, err := DecodeMarketFields(map[string]string{
			"BID":   "100.5",
			"OFFER": "",
		})
		require.NoError(t, err)

		require.NotNil(t, fields.Bid)
		assert.Equal(t, 100.5, *fields.Bid)
		assert.Nil(t, fields.Offer)
	})

	t.Run("missing numeric value decodes to no value", func(t *testing.T) {
		fields, err := DecodeMarketFields(map[string]string{"BID": "100.5"})
		require.NoError(t, err)

		assert.Nil(t, fields.Offer)
		assert.Nil(t, fields.High)
		assert.Nil(t, fields.MarketState)
	})

	t.Run("non-numeric value fails decode", func(t *testing.T) {
		_, err := DecodeMarketFields(map[string]string{"BID": "not-a-number"})
		require.Error(t, err)

		var numErr *InvalidNumberError
		require.ErrorAs(t, err, &numErr)
		assert.Equal(t, "BID", numErr.Field)
		assert.Equal(t, "not-a-number", numErr.Value)
	})

	t.Run("update time passes through as string", func(t *testing.T) {
		fields, err := DecodeMarketFields(map[string]string{"UPDATE_TIME": "15:04:05"})
		require.NoError(t, err)

		require.NotNil(t, fields.UpdateTime)
		assert.Equal(t, "15:04:05", *fields.UpdateTime)
	})

	t.Run("empty string field is preserved, not coerced to nil", func(t *testing.T) {
		fields, err := DecodeMarketFields(map[string]string{"UPDATE_TIME": ""})
		require.NoError(t, err)

		require.NotNil(t, fields.UpdateTime)
		assert.Equal(t, "", *fields.UpdateTime)
	})
}

func TestDecodeMarketFields_MarketState(t *testing.T) {
	known := []string{
		"TRADEABLE", "CLOSED", "EDIT", "AUCTION",
		"AUCTION_NO_EDIT", "OFFLINE", "SUSPENDED",
	}
	for _, token := range known {
		t.Run("token "+token, func(t *testing.T) {
			fields, err := DecodeMarketFields(map[string]string{"MARKET_STATE": token})
			require.NoError(t, err)
			require.NotNil(t, fields.MarketState)
			assert.Equal(t, MarketState(token), *fields.MarketState)
		})
	}

	t.Run("unknown token is a hard error, never a default", func(t *testing.T) {
		_, err := DecodeMarketFields(map[string]string{"MARKET_STATE": "HALTED"})
		require.Error(t, err)

		var enumErr *UnknownEnumValueError
		require.ErrorAs(t, err, &enumErr)
		assert.Equal(t, "MARKET_STATE", enumErr.Field)
		assert.Equal(t, "HALTED", enumErr.Value)
	})

	t.Run("lowercase token is rejected", func(t *testing.T) {
		_, err := DecodeMarketFields(map[string]string{"MARKET_STATE": "tradeable"})
		var enumErr *UnknownEnumValueError
		require.ErrorAs(t, err, &enumErr)
	})
}

func TestDecodeMarketUpdate(t *testing.T) {
	t.Run("full and changed field sets decode independently", func(t *testing.T) {
		update, err := DecodeMarketUpdate(
			"MARKET:IX.D.DAX.DAILY.IP",
			1,
			map[string]string{"BID": "100.5", "OFFER": ""},
			map[string]string{"BID": "100.5"},
			true,
		)
		require.NoError(t, err)

		assert.Equal(t, "MARKET:IX.D.DAX.DAILY.IP", update.Item)
		assert.Equal(t, 1, update.ItemPos)
		assert.True(t, update.Snapshot)

		require.NotNil(t, update.Fields.Bid)
		assert.Equal(t, 100.5, *update.Fields.Bid)
		assert.Nil(t, update.Fields.Offer)

		require.NotNil(t, update.ChangedFields.Bid)
		assert.Nil(t, update.ChangedFields.Offer)
	})

	t.Run("bad value in changed subset fails the whole update", func(t *testing.T) {
		_, err := DecodeMarketUpdate(
			"MARKET:IX.D.DAX.DAILY.IP",
			1,
			map[string]string{"BID": "100.5"},
			map[string]string{"BID": "n/a"},
			false,
		)
		require.Error(t, err)
	})
}
