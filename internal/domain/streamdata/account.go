package streamdata

// AccountFields holds the decoded values of an account balance update.
// Nil means the server delivered no value for the field.
type AccountFields struct {
	PNL             *float64
	Deposit         *float64
	AvailableCash   *float64
	PNLLR           *float64
	PNLNLR          *float64
	Funds           *float64
	Margin          *float64
	MarginLR        *float64
	MarginNLR       *float64
	AvailableToDeal *float64
	Equity          *float64
	EquityUsed      *float64
}

// AccountUpdate is a typed projection of one raw account update.
type AccountUpdate struct {
	Item          string
	ItemPos       int
	Fields        AccountFields
	ChangedFields AccountFields
	Snapshot      bool
}

// DecodeAccountFields converts a raw field map into AccountFields.
func DecodeAccountFields(raw map[string]string) (AccountFields, error) {
	m := fieldMap(raw)
	var (
		f   AccountFields
		err error
	)
	if f.PNL, err = m.float(string(AccountFieldPNL)); err != nil {
		return AccountFields{}, err
	}
	if f.Deposit, err = m.float(string(AccountFieldDeposit)); err != nil {
		return AccountFields{}, err
	}
	if f.AvailableCash, err = m.float(string(AccountFieldAvailableCash)); err != nil {
		return AccountFields{}, err
	}
	if f.PNLLR, err = m.float(string(AccountFieldPNLLR)); err != nil {
		return AccountFields{}, err
	}
	if f.PNLNLR, err = m.float(string(AccountFieldPNLNLR)); err != nil {
		return AccountFields{}, err
	}
	if f.Funds, err = m.float(string(AccountFieldFunds)); err != nil {
		return AccountFields{}, err
	}
	if f.Margin, err = m.float(string(AccountFieldMargin)); err != nil {
		return AccountFields{}, err
	}
	if f.MarginLR, err = m.float(string(AccountFieldMarginLR)); err != nil {
		return AccountFields{}, err
	}
	if f.MarginNLR, err = m.float(string(AccountFieldMarginNLR)); err != nil {
		return AccountFields{}, err
	}
	if f.AvailableToDeal, err = m.float(string(AccountFieldAvailableToDeal)); err != nil {
		return AccountFields{}, err
	}
	if f.Equity, err = m.float(string(AccountFieldEquity)); err != nil {
		return AccountFields{}, err
	}
	if f.EquityUsed, err = m.float(string(AccountFieldEquityUsed)); err != nil {
		return AccountFields{}, err
	}
	return f, nil
}

// DecodeAccountUpdate builds an AccountUpdate from the raw update delivered
// by the streaming server.
func DecodeAccountUpdate(item string, pos int, fields, changed map[string]string, snapshot bool) (*AccountUpdate, error) {
	all, err := DecodeAccountFields(fields)
	if err != nil {
		return nil, err
	}
	delta, err := DecodeAccountFields(changed)
	if err != nil {
		return nil, err
	}
	return &AccountUpdate{
		Item:          item,
		ItemPos:       pos,
		Fields:        all,
		ChangedFields: delta,
		Snapshot:      snapshot,
	}, nil
}
