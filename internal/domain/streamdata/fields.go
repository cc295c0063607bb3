package streamdata

import "fmt"

// MarketField identifies a field of the basic market data subscription.
type MarketField string

const (
	MarketFieldMidOpen     MarketField = "MID_OPEN"
	MarketFieldHigh        MarketField = "HIGH"
	MarketFieldLow         MarketField = "LOW"
	MarketFieldChange      MarketField = "CHANGE"
	MarketFieldChangePct   MarketField = "CHANGE_PCT"
	MarketFieldUpdateTime  MarketField = "UPDATE_TIME"
	MarketFieldMarketDelay MarketField = "MARKET_DELAY"
	MarketFieldMarketState MarketField = "MARKET_STATE"
	MarketFieldBid         MarketField = "BID"
	MarketFieldOffer       MarketField = "OFFER"
)

// AllMarketFields returns every market field in wire order.
func AllMarketFields() []MarketField {
	return []MarketField{
		MarketFieldMidOpen,
		MarketFieldHigh,
		MarketFieldLow,
		MarketFieldChange,
		MarketFieldChangePct,
		MarketFieldUpdateTime,
		MarketFieldMarketDelay,
		MarketFieldMarketState,
		MarketFieldBid,
		MarketFieldOffer,
	}
}

// PriceField identifies a field of the detailed price-ladder subscription.
type PriceField string

const (
	PriceFieldMidOpen     PriceField = "MID_OPEN"
	PriceFieldHigh        PriceField = "HIGH"
	PriceFieldLow         PriceField = "LOW"
	PriceFieldBidQuoteID  PriceField = "BIDQUOTEID"
	PriceFieldAskQuoteID  PriceField = "ASKQUOTEID"
	PriceFieldTimestamp   PriceField = "TIMESTAMP"
	PriceFieldDealingFlag PriceField = "DLG_FLAG"
)

// LadderDepth is the number of levels the price ladder carries per side.
const LadderDepth = 5

// CurrencyCount is the number of alternative currencies served alongside the
// base currency on a price subscription.
const CurrencyCount = 5

// PriceFieldBidPrice returns the ladder field for the bid price at the given
// level (1-based).
func PriceFieldBidPrice(level int) PriceField {
	return PriceField(fmt.Sprintf("BIDPRICE%d", level))
}

// PriceFieldAskPrice returns the ladder field for the ask price at the given
// level (1-based).
func PriceFieldAskPrice(level int) PriceField {
	return PriceField(fmt.Sprintf("ASKPRICE%d", level))
}

// PriceFieldBidSize returns the ladder field for the bid size at the given
// level (1-based).
func PriceFieldBidSize(level int) PriceField {
	return PriceField(fmt.Sprintf("BIDSIZE%d", level))
}

// PriceFieldAskSize returns the ladder field for the ask size at the given
// level (1-based).
func PriceFieldAskSize(level int) PriceField {
	return PriceField(fmt.Sprintf("ASKSIZE%d", level))
}

// PriceFieldCurrency returns the field naming the currency at the given slot
// (0 is the base currency).
func PriceFieldCurrency(slot int) PriceField {
	return PriceField(fmt.Sprintf("CURRENCY%d", slot))
}

// PriceFieldCurrencyBidSize returns the per-currency bid size field for the
// given currency (1-based) and level (1-based).
func PriceFieldCurrencyBidSize(currency, level int) PriceField {
	return PriceField(fmt.Sprintf("C%dBIDSIZE%d", currency, level))
}

// PriceFieldCurrencyAskSize returns the per-currency ask size field for the
// given currency (1-based) and level (1-based).
func PriceFieldCurrencyAskSize(currency, level int) PriceField {
	return PriceField(fmt.Sprintf("C%dASKSIZE%d", currency, level))
}

// AllPriceFields returns the full price-ladder schema in wire order.
func AllPriceFields() []PriceField {
	fields := []PriceField{
		PriceFieldMidOpen,
		PriceFieldHigh,
		PriceFieldLow,
		PriceFieldBidQuoteID,
		PriceFieldAskQuoteID,
	}
	for level := 1; level <= LadderDepth; level++ {
		fields = append(fields, PriceFieldBidPrice(level), PriceFieldAskPrice(level))
	}
	for level := 1; level <= LadderDepth; level++ {
		fields = append(fields, PriceFieldBidSize(level), PriceFieldAskSize(level))
	}
	for slot := 0; slot <= CurrencyCount; slot++ {
		fields = append(fields, PriceFieldCurrency(slot))
	}
	for currency := 1; currency <= CurrencyCount; currency++ {
		for level := 1; level <= LadderDepth; level++ {
			fields = append(fields, PriceFieldCurrencyBidSize(currency, level))
		}
	}
	for currency := 1; currency <= CurrencyCount; currency++ {
		for level := 1; level <= LadderDepth; level++ {
			fields = append(fields, PriceFieldCurrencyAskSize(currency, level))
		}
	}
	fields = append(fields, PriceFieldTimestamp, PriceFieldDealingFlag)
	return fields
}

// ChartField identifies a field of the chart subscription. Candle scales
// carry per-side OHLC and consolidation state; tick scales carry the traded
// values only.
type ChartField string

const (
	ChartFieldLTV           ChartField = "LTV"
	ChartFieldTTV           ChartField = "TTV"
	ChartFieldUTM           ChartField = "UTM"
	ChartFieldDayOpenMid    ChartField = "DAY_OPEN_MID"
	ChartFieldDayNetChgMid  ChartField = "DAY_NET_CHG_MID"
	ChartFieldDayPercChgMid ChartField = "DAY_PERC_CHG_MID"
	ChartFieldDayHigh       ChartField = "DAY_HIGH"
	ChartFieldDayLow        ChartField = "DAY_LOW"
	ChartFieldOfrOpen       ChartField = "OFR_OPEN"
	ChartFieldOfrHigh       ChartField = "OFR_HIGH"
	ChartFieldOfrLow        ChartField = "OFR_LOW"
	ChartFieldOfrClose      ChartField = "OFR_CLOSE"
	ChartFieldBidOpen       ChartField = "BID_OPEN"
	ChartFieldBidHigh       ChartField = "BID_HIGH"
	ChartFieldBidLow        ChartField = "BID_LOW"
	ChartFieldBidClose      ChartField = "BID_CLOSE"
	ChartFieldLtpOpen       ChartField = "LTP_OPEN"
	ChartFieldLtpHigh       ChartField = "LTP_HIGH"
	ChartFieldLtpLow        ChartField = "LTP_LOW"
	ChartFieldLtpClose      ChartField = "LTP_CLOSE"
	ChartFieldConsEnd       ChartField = "CONS_END"
	ChartFieldConsTickCount ChartField = "CONS_TICK_COUNT"
)

// AllChartFields returns every chart field in wire order.
func AllChartFields() []ChartField {
	return []ChartField{
		ChartFieldLTV,
		ChartFieldTTV,
		ChartFieldUTM,
		ChartFieldDayOpenMid,
		ChartFieldDayNetChgMid,
		ChartFieldDayPercChgMid,
		ChartFieldDayHigh,
		ChartFieldDayLow,
		ChartFieldOfrOpen,
		ChartFieldOfrHigh,
		ChartFieldOfrLow,
		ChartFieldOfrClose,
		ChartFieldBidOpen,
		ChartFieldBidHigh,
		ChartFieldBidLow,
		ChartFieldBidClose,
		ChartFieldLtpOpen,
		ChartFieldLtpHigh,
		ChartFieldLtpLow,
		ChartFieldLtpClose,
		ChartFieldConsEnd,
		ChartFieldConsTickCount,
	}
}

// TradeField identifies a field of the account trade-event subscription.
type TradeField string

const (
	TradeFieldConfirms TradeField = "CONFIRMS"
	TradeFieldOPU      TradeField = "OPU"
	TradeFieldWOU      TradeField = "WOU"
)

// AllTradeFields returns every trade field; the trade subscription always
// requests the full set.
func AllTradeFields() []TradeField {
	return []TradeField{TradeFieldConfirms, TradeFieldOPU, TradeFieldWOU}
}

// AccountField identifies a field of the account balance subscription.
type AccountField string

const (
	AccountFieldPNL             AccountField = "PNL"
	AccountFieldDeposit         AccountField = "DEPOSIT"
	AccountFieldAvailableCash   AccountField = "AVAILABLE_CASH"
	AccountFieldPNLLR           AccountField = "PNL_LR"
	AccountFieldPNLNLR          AccountField = "PNL_NLR"
	AccountFieldFunds           AccountField = "FUNDS"
	AccountFieldMargin          AccountField = "MARGIN"
	AccountFieldMarginLR        AccountField = "MARGIN_LR"
	AccountFieldMarginNLR       AccountField = "MARGIN_NLR"
	AccountFieldAvailableToDeal AccountField = "AVAILABLE_TO_DEAL"
	AccountFieldEquity          AccountField = "EQUITY"
	AccountFieldEquityUsed      AccountField = "EQUITY_USED"
)

// AllAccountFields returns every account field in wire order.
func AllAccountFields() []AccountField {
	return []AccountField{
		AccountFieldPNL,
		AccountFieldDeposit,
		AccountFieldAvailableCash,
		AccountFieldPNLLR,
		AccountFieldPNLNLR,
		AccountFieldFunds,
		AccountFieldMargin,
		AccountFieldMarginLR,
		AccountFieldMarginNLR,
		AccountFieldAvailableToDeal,
		AccountFieldEquity,
		AccountFieldEquityUsed,
	}
}
