package streaming

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/OpenLLT/ig-client/internal/domain/streamdata"
)

// SubscriptionMode selects how the server schedules updates.
type SubscriptionMode string

const (
	// ModeMerge coalesces intermediate updates per field.
	ModeMerge SubscriptionMode = "MERGE"
	// ModeDistinct delivers every event without coalescing.
	ModeDistinct SubscriptionMode = "DISTINCT"
	// ModeRaw delivers updates as produced, without snapshot management.
	ModeRaw SubscriptionMode = "RAW"
)

// Descriptor fully describes one subscription: what items to watch, which
// fields to receive and how. ID is unique per descriptor for log correlation.
type Descriptor struct {
	ID          string
	Mode        SubscriptionMode
	Items       []string
	Fields      []string
	DataAdapter string
	Snapshot    bool
}

var (
	ErrNoEpics           = errors.New("at least one epic is required")
	ErrEmptyEpic         = errors.New("epic must not be empty")
	ErrNoAccountID       = errors.New("account id must not be empty")
	ErrUnknownChartScale = errors.New("unknown chart scale")
)

// BuildMarketSubscription describes basic market data for the given epics,
// one MARKET:<epic> item each, merged with an initial snapshot.
func BuildMarketSubscription(epics []string) (Descriptor, error) {
	items, err := namespacedItems("MARKET:", epics)
	if err != nil {
		return Descriptor{}, err
	}
	fields := streamdata.AllMarketFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return Descriptor{
		ID:       uuid.NewString(),
		Mode:     ModeMerge,
		Items:    items,
		Fields:   names,
		Snapshot: true,
	}, nil
}

// BuildPriceSubscription describes the detailed price ladder for the given
// epics on one account, one PRICE:<accountID>:<epic> item each, served by
// the named data adapter.
func BuildPriceSubscription(accountID string, epics []string, dataAdapter string) (Descriptor, error) {
	if accountID == "" {
		return Descriptor{}, ErrNoAccountID
	}
	items, err := namespacedItems(fmt.Sprintf("PRICE:%s:", accountID), epics)
	if err != nil {
		return Descriptor{}, err
	}
	fields := streamdata.AllPriceFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return Descriptor{
		ID:          uuid.NewString(),
		Mode:        ModeMerge,
		Items:       items,
		Fields:      names,
		DataAdapter: dataAdapter,
		Snapshot:    true,
	}, nil
}

// BuildTradeSubscription describes the trade event feed of one account.
// Events must never be coalesced, so the subscription runs distinct; an
// initial snapshot is still requested.
func BuildTradeSubscription(accountID string) (Descriptor, error) {
	if accountID == "" {
		return Descriptor{}, ErrNoAccountID
	}
	fields := streamdata.AllTradeFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return Descriptor{
		ID:       uuid.NewString(),
		Mode:     ModeDistinct,
		Items:    []string{"TRADE:" + accountID},
		Fields:   names,
		Snapshot: true,
	}, nil
}

// BuildChartSubscription describes tick or candle chart data for the given
// epics at one scale, one CHART:<epic>:<scale> item each, merged with an
// initial snapshot.
func BuildChartSubscription(epics []string, scale streamdata.ChartScale) (Descriptor, error) {
	if !scale.Valid() {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownChartScale, scale)
	}
	items, err := namespacedItems("CHART:", epics)
	if err != nil {
		return Descriptor{}, err
	}
	for i, item := range items {
		items[i] = item + ":" + string(scale)
	}
	fields := streamdata.AllChartFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return Descriptor{
		ID:       uuid.NewString(),
		Mode:     ModeMerge,
		Items:    items,
		Fields:   names,
		Snapshot: true,
	}, nil
}

// BuildAccountSubscription describes the balance feed of one account,
// merged with an initial snapshot.
func BuildAccountSubscription(accountID string) (Descriptor, error) {
	if accountID == "" {
		return Descriptor{}, ErrNoAccountID
	}
	fields := streamdata.AllAccountFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return Descriptor{
		ID:       uuid.NewString(),
		Mode:     ModeMerge,
		Items:    []string{"ACCOUNT:" + accountID},
		Fields:   names,
		Snapshot: true,
	}, nil
}

func namespacedItems(prefix string, epics []string) ([]string, error) {
	if len(epics) == 0 {
		return nil, ErrNoEpics
	}
	items := make([]string, len(epics))
	for i, epic := range epics {
		if epic == "" {
			return nil, ErrEmptyEpic
		}
		items[i] = prefix + epic
	}
	return items, nil
}
