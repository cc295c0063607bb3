package streamdata

// DealingFlag is the trading availability flag delivered on the DLG_FLAG
// field of a price subscription.
type DealingFlag string

const (
	DealingFlagClosed        DealingFlag = "CLOSED"
	DealingFlagCall          DealingFlag = "CALL"
	DealingFlagDeal          DealingFlag = "DEAL"
	DealingFlagEdit          DealingFlag = "EDIT"
	DealingFlagClosingOnly   DealingFlag = "CLOSINGONLY"
	DealingFlagDealNoEdit    DealingFlag = "DEALNOEDIT"
	DealingFlagAuction       DealingFlag = "AUCTION"
	DealingFlagAuctionNoEdit DealingFlag = "AUCTIONNOEDIT"
	DealingFlagSuspend       DealingFlag = "SUSPEND"
)

func parseDealingFlag(m fieldMap) (*DealingFlag, error) {
	v, ok := m[string(PriceFieldDealingFlag)]
	if !ok {
		return nil, nil
	}
	switch DealingFlag(v) {
	case DealingFlagClosed, DealingFlagCall, DealingFlagDeal, DealingFlagEdit,
		DealingFlagClosingOnly, DealingFlagDealNoEdit, DealingFlagAuction,
		DealingFlagAuctionNoEdit, DealingFlagSuspend:
		flag := DealingFlag(v)
		return &flag, nil
	}
	return nil, &UnknownEnumValueError{Field: string(PriceFieldDealingFlag), Value: v}
}

// PriceFields holds the decoded values of a detailed price-ladder update.
// Ladder arrays are indexed 0..LadderDepth-1 for wire levels 1..LadderDepth;
// per-currency sizes are indexed [currency-1][level-1]. Currencies[0] is the
// base currency. Nil means the server delivered no value.
type PriceFields struct {
	MidOpen    *float64
	High       *float64
	Low        *float64
	BidQuoteID *string
	AskQuoteID *string

	BidPrices [LadderDepth]*float64
	AskPrices [LadderDepth]*float64
	BidSizes  [LadderDepth]*float64
	AskSizes  [LadderDepth]*float64

	Currencies       [CurrencyCount + 1]*string
	CurrencyBidSizes [CurrencyCount][LadderDepth]*float64
	CurrencyAskSizes [CurrencyCount][LadderDepth]*float64

	Timestamp   *float64
	DealingFlag *DealingFlag
}

// PriceUpdate is a typed projection of one raw price-ladder update.
type PriceUpdate struct {
	Item          string
	ItemPos       int
	Fields        PriceFields
	ChangedFields PriceFields
	Snapshot      bool
}

// DecodePriceFields converts a raw field map into PriceFields.
func DecodePriceFields(raw map[string]string) (PriceFields, error) {
	m := fieldMap(raw)
	var (
		f   PriceFields
		err error
	)
	if f.MidOpen, err = m.float(string(PriceFieldMidOpen)); err != nil {
		return PriceFields{}, err
	}
	if f.High, err = m.float(string(PriceFieldHigh)); err != nil {
		return PriceFields{}, err
	}
	if f.Low, err = m.float(string(PriceFieldLow)); err != nil {
		return PriceFields{}, err
	}
	f.BidQuoteID = m.str(string(PriceFieldBidQuoteID))
	f.AskQuoteID = m.str(string(PriceFieldAskQuoteID))

	for level := 1; level <= LadderDepth; level++ {
		if f.BidPrices[level-1], err = m.float(string(PriceFieldBidPrice(level))); err != nil {
			return PriceFields{}, err
		}
		if f.AskPrices[level-1], err = m.float(string(PriceFieldAskPrice(level))); err != nil {
			return PriceFields{}, err
		}
		if f.BidSizes[level-1], err = m.float(string(PriceFieldBidSize(level))); err != nil {
			return PriceFields{}, err
		}
		if f.AskSizes[level-1], err = m.float(string(PriceFieldAskSize(level))); err != nil {
			return PriceFields{}, err
		}
	}

	for slot := 0; slot <= CurrencyCount; slot++ {
		f.Currencies[slot] = m.str(string(PriceFieldCurrency(slot)))
	}
	for currency := 1; currency <= CurrencyCount; currency++ {
		for level := 1; level <= LadderDepth; level++ {
			if f.CurrencyBidSizes[currency-1][level-1], err = m.float(string(PriceFieldCurrencyBidSize(currency, level))); err != nil {
				return PriceFields{}, err
			}
			if f.CurrencyAskSizes[currency-1][level-1], err = m.float(string(PriceFieldCurrencyAskSize(currency, level))); err != nil {
				return PriceFields{}, err
			}
		}
	}

	if f.Timestamp, err = m.float(string(PriceFieldTimestamp)); err != nil {
		return PriceFields{}, err
	}
	if f.DealingFlag, err = parseDealingFlag(m); err != nil {
		return PriceFields{}, err
	}
	return f, nil
}

// DecodePriceUpdate builds a PriceUpdate from the raw update delivered by
// the streaming server.
func DecodePriceUpdate(item string, pos int, fields, changed map[string]string, snapshot bool) (*PriceUpdate, error) {
	all, err := DecodePriceFields(fields)
	if err != nil {
		return nil, err
	}
	delta, err := DecodePriceFields(changed)
	if err != nil {
		return nil, err
	}
	return &PriceUpdate{
		Item:          item,
		ItemPos:       pos,
		Fields:        all,
		ChangedFields: delta,
		Snapshot:      snapshot,
	}, nil
}
