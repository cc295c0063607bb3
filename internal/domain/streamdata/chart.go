package streamdata

// ChartScale selects how a chart subscription aggregates: tick-by-tick or
// one candle per interval. The token is part of the item name on the wire.
type ChartScale string

const (
	ChartScaleTick       ChartScale = "TICK"
	ChartScaleSecond     ChartScale = "SECOND"
	ChartScaleMinute     ChartScale = "1MINUTE"
	ChartScaleFiveMinute ChartScale = "5MINUTE"
	ChartScaleHour       ChartScale = "HOUR"
)

// Valid reports whether the scale is one the server accepts.
func (s ChartScale) Valid() bool {
	switch s {
	case ChartScaleTick, ChartScaleSecond, ChartScaleMinute,
		ChartScaleFiveMinute, ChartScaleHour:
		return true
	}
	return false
}

// IsCandle reports whether the scale aggregates ticks into candles.
func (s ChartScale) IsCandle() bool {
	return s.Valid() && s != ChartScaleTick
}

// ChartFields holds the decoded values of one chart update. Every field is
// numeric on the wire; UpdateTime is milliseconds since the epoch. Nil means
// the server delivered no value for the field.
type ChartFields struct {
	LastTradedVolume       *float64
	IncrementalVolume      *float64
	UpdateTime             *float64
	DayOpenMid             *float64
	DayNetChangeMid        *float64
	DayPercChangeMid       *float64
	DayHigh                *float64
	DayLow                 *float64
	OfferOpen              *float64
	OfferHigh              *float64
	OfferLow               *float64
	OfferClose             *float64
	BidOpen                *float64
	BidHigh                *float64
	BidLow                 *float64
	BidClose               *float64
	LastTradedOpen         *float64
	LastTradedHigh         *float64
	LastTradedLow          *float64
	LastTradedClose        *float64
	ConsolidationEnd       *float64
	ConsolidationTickCount *float64
}

// ChartUpdate is a typed projection of one raw chart update.
type ChartUpdate struct {
	Item          string
	ItemPos       int
	Scale         ChartScale
	Fields        ChartFields
	ChangedFields ChartFields
	Snapshot      bool
}

// DecodeChartFields converts a raw field map into ChartFields.
func DecodeChartFields(raw map[string]string) (ChartFields, error) {
	m := fieldMap(raw)
	var (
		f   ChartFields
		err error
	)
	if f.LastTradedVolume, err = m.float(string(ChartFieldLTV)); err != nil {
		return ChartFields{}, err
	}
	if f.IncrementalVolume, err = m.float(string(ChartFieldTTV)); err != nil {
		return ChartFields{}, err
	}
	if f.UpdateTime, err = m.float(string(ChartFieldUTM)); err != nil {
		return ChartFields{}, err
	}
	if f.DayOpenMid, err = m.float(string(ChartFieldDayOpenMid)); err != nil {
		return ChartFields{}, err
	}
	if f.DayNetChangeMid, err = m.float(string(ChartFieldDayNetChgMid)); err != nil {
		return ChartFields{}, err
	}
	if f.DayPercChangeMid, err = m.float(string(ChartFieldDayPercChgMid)); err != nil {
		return ChartFields{}, err
	}
	if f.DayHigh, err = m.float(string(ChartFieldDayHigh)); err != nil {
		return ChartFields{}, err
	}
	if f.DayLow, err = m.float(string(ChartFieldDayLow)); err != nil {
		return ChartFields{}, err
	}
	if f.OfferOpen, err = m.float(string(ChartFieldOfrOpen)); err != nil {
		return ChartFields{}, err
	}
	if f.OfferHigh, err = m.float(string(ChartFieldOfrHigh)); err != nil {
		return ChartFields{}, err
	}
	if f.OfferLow, err = m.float(string(ChartFieldOfrLow)); err != nil {
		return ChartFields{}, err
	}
	if f.OfferClose, err = m.float(string(ChartFieldOfrClose)); err != nil {
		return ChartFields{}, err
	}
	if f.BidOpen, err = m.float(string(ChartFieldBidOpen)); err != nil {
		return ChartFields{}, err
	}
	if f.BidHigh, err = m.float(string(ChartFieldBidHigh)); err != nil {
		return ChartFields{}, err
	}
	if f.BidLow, err = m.float(string(ChartFieldBidLow)); err != nil {
		return ChartFields{}, err
	}
	if f.BidClose, err = m.float(string(ChartFieldBidClose)); err != nil {
		return ChartFields{}, err
	}
	if f.LastTradedOpen, err = m.float(string(ChartFieldLtpOpen)); err != nil {
		return ChartFields{}, err
	}
	if f.LastTradedHigh, err = m.float(string(ChartFieldLtpHigh)); err != nil {
		return ChartFields{}, err
	}
	if f.LastTradedLow, err = m.float(string(ChartFieldLtpLow)); err != nil {
		return ChartFields{}, err
	}
	if f.LastTradedClose, err = m.float(string(ChartFieldLtpClose)); err != nil {
		return ChartFields{}, err
	}
	if f.ConsolidationEnd, err = m.float(string(ChartFieldConsEnd)); err != nil {
		return ChartFields{}, err
	}
	if f.ConsolidationTickCount, err = m.float(string(ChartFieldConsTickCount)); err != nil {
		return ChartFields{}, err
	}
	return f, nil
}

// DecodeChartUpdate builds a ChartUpdate from the raw update delivered by
// the streaming server. scale is taken from the subscription, not the wire.
func DecodeChartUpdate(item string, pos int, scale ChartScale, fields, changed map[string]string, snapshot bool) (*ChartUpdate, error) {
	all, err := DecodeChartFields(fields)
	if err != nil {
		return nil, err
	}
	delta, err := DecodeChartFields(changed)
	if err != nil {
		return nil, err
	}
	return &ChartUpdate{
		Item:          item,
		ItemPos:       pos,
		Scale:         scale,
		Fields:        all,
		ChangedFields: delta,
		Snapshot:      snapshot,
	}, nil
}
