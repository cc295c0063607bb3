package streamdata

// MarketState is the dealing state of a market as reported on the
// MARKET_STATE field.
type MarketState string

const (
	MarketStateTradeable     MarketState = "TRADEABLE"
	MarketStateClosed        MarketState = "CLOSED"
	MarketStateEdit          MarketState = "EDIT"
	MarketStateAuction       MarketState = "AUCTION"
	MarketStateAuctionNoEdit MarketState = "AUCTION_NO_EDIT"
	MarketStateOffline       MarketState = "OFFLINE"
	MarketStateSuspended     MarketState = "SUSPENDED"
)

func parseMarketState(m fieldMap) (*MarketState, error) {
	v, ok := m[string(MarketFieldMarketState)]
	if !ok {
		return nil, nil
	}
	switch MarketState(v) {
	case MarketStateTradeable, MarketStateClosed, MarketStateEdit,
		MarketStateAuction, MarketStateAuctionNoEdit,
		MarketStateOffline, MarketStateSuspended:
		state := MarketState(v)
		return &state, nil
	}
	return nil, &UnknownEnumValueError{Field: string(MarketFieldMarketState), Value: v}
}

// MarketFields holds the decoded values of a basic market data update.
// Nil means the server delivered no value for the field.
type MarketFields struct {
	MidOpen     *float64
	High        *float64
	Low         *float64
	Change      *float64
	ChangePct   *float64
	UpdateTime  *string
	MarketDelay *float64
	MarketState *MarketState
	Bid         *float64
	Offer       *float64
}

// MarketUpdate is a typed projection of one raw market update.
type MarketUpdate struct {
	Item          string
	ItemPos       int
	Fields        MarketFields
	ChangedFields MarketFields
	Snapshot      bool
}

// DecodeMarketFields converts a raw field map into MarketFields.
func DecodeMarketFields(raw map[string]string) (MarketFields, error) {
	m := fieldMap(raw)
	var (
		f   MarketFields
		err error
	)
	if f.MidOpen, err = m.float(string(MarketFieldMidOpen)); err != nil {
		return MarketFields{}, err
	}
	if f.High, err = m.float(string(MarketFieldHigh)); err != nil {
		return MarketFields{}, err
	}
	if f.Low, err = m.float(string(MarketFieldLow)); err != nil {
		return MarketFields{}, err
	}
	if f.Change, err = m.float(string(MarketFieldChange)); err != nil {
		return MarketFields{}, err
	}
	if f.ChangePct, err = m.float(string(MarketFieldChangePct)); err != nil {
		return MarketFields{}, err
	}
	f.UpdateTime = m.str(string(MarketFieldUpdateTime))
	if f.MarketDelay, err = m.float(string(MarketFieldMarketDelay)); err != nil {
		return MarketFields{}, err
	}
	if f.MarketState, err = parseMarketState(m); err != nil {
		return MarketFields{}, err
	}
	if f.Bid, err = m.float(string(MarketFieldBid)); err != nil {
		return MarketFields{}, err
	}
	if f.Offer, err = m.float(string(MarketFieldOffer)); err != nil {
		return MarketFields{}, err
	}
	return f, nil
}

// DecodeMarketUpdate builds a MarketUpdate from the raw update delivered by
// the streaming server.
func DecodeMarketUpdate(item string, pos int, fields, changed map[string]string, snapshot bool) (*MarketUpdate, error) {
	all, err := DecodeMarketFields(fields)
	if err != nil {
		return nil, err
	}
	delta, err := DecodeMarketFields(changed)
	if err != nil {
		return nil, err
	}
	return &MarketUpdate{
		Item:          item,
		ItemPos:       pos,
		Fields:        all,
		ChangedFields: delta,
		Snapshot:      snapshot,
	}, nil
}
