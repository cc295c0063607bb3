package session

// Account is one dealing account reachable with the session.
type Account struct {
	AccountID   string  `json:"accountId"`
	AccountName string  `json:"accountName"`
	AccountType string  `json:"accountType"`
	Preferred   bool    `json:"preferred"`
	Currency    string  `json:"currency"`
	Balance     Balance `json:"balance"`
}

// Balance is the money breakdown of an account.
type Balance struct {
	Available  float64 `json:"available"`
	Balance    float64 `json:"balance"`
	Deposit    float64 `json:"deposit"`
	ProfitLoss float64 `json:"profitLoss"`
}

// Market is one search result from the market catalogue.
type Market struct {
	Epic           string   `json:"epic"`
	InstrumentName string   `json:"instrumentName"`
	InstrumentType string   `json:"instrumentType"`
	Expiry         string   `json:"expiry"`
	MarketStatus   string   `json:"marketStatus"`
	Bid            *float64 `json:"bid"`
	Offer          *float64 `json:"offer"`
	ScalingFactor  float64  `json:"scalingFactor"`
}
