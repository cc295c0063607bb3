package streamdata

// TradeFields holds the payloads of one trade event. Each field carries an
// opaque JSON document from the dealing backend; the subscription runs in
// distinct mode so no event is ever coalesced away. Nil means the event did
// not include that payload.
type TradeFields struct {
	Confirms           *string
	OpenPositionUpdate *string
	WorkingOrderUpdate *string
}

// TradeUpdate is a typed projection of one raw trade event.
type TradeUpdate struct {
	Item          string
	ItemPos       int
	Fields        TradeFields
	ChangedFields TradeFields
	Snapshot      bool
}

// DecodeTradeFields converts a raw field map into TradeFields. Trade payloads
// pass through untouched; an empty string is preserved, only absence maps to
// nil.
func DecodeTradeFields(raw map[string]string) (TradeFields, error) {
	m := fieldMap(raw)
	return TradeFields{
		Confirms:           m.str(string(TradeFieldConfirms)),
		OpenPositionUpdate: m.str(string(TradeFieldOPU)),
		WorkingOrderUpdate: m.str(string(TradeFieldWOU)),
	}, nil
}

// DecodeTradeUpdate builds a TradeUpdate from the raw update delivered by
// the streaming server.
func DecodeTradeUpdate(item string, pos int, fields, changed map[string]string, snapshot bool) (*TradeUpdate, error) {
	all, err := DecodeTradeFields(fields)
	if err != nil {
		return nil, err
	}
	delta, err := DecodeTradeFields(changed)
	if err != nil {
		return nil, err
	}
	return &TradeUpdate{
		Item:          item,
		ItemPos:       pos,
		Fields:        all,
		ChangedFields: delta,
		Snapshot:      snapshot,
	}, nil
}
