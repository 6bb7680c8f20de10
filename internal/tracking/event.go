package tracking

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/conversions"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Event is a storefront conversion event before it is hashed into wire form.
type Event struct {
	Name        enums.TrackingEvent
	EventID     string
	SourceURL   string
	OccurredAt  time.Time
	Customer    conversions.Customer
	Value       *decimal.Decimal
	Currency    string
	ContentIDs  []string
	ContentName string
	ContentType string
	NumItems    int
	OrderID     string
}

// Wire converts the event to the upstream payload, hashing personal data.
func (e Event) Wire() conversions.Event {
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	eventID := strings.TrimSpace(e.EventID)
	if eventID == "" {
		eventID = uuid.NewString()
	}

	out := conversions.Event{
		EventName:      e.Name.String(),
		EventTime:      occurred.Unix(),
		EventID:        eventID,
		EventSourceURL: strings.TrimSpace(e.SourceURL),
		UserData:       conversions.UserDataFor(e.Customer),
	}

	if e.Value != nil || len(e.ContentIDs) > 0 || e.OrderID != "" || e.ContentName != "" {
		custom := &conversions.CustomData{
			Currency:    e.Currency,
			ContentIDs:  e.ContentIDs,
			ContentName: e.ContentName,
			ContentType: e.ContentType,
			NumItems:    e.NumItems,
			OrderID:     e.OrderID,
		}
		if e.Value != nil {
			v := e.Value.Round(2).InexactFloat64()
			custom.Value = &v
		}
		if custom.ContentType == "" && len(custom.ContentIDs) > 0 {
			custom.ContentType = "product"
		}
		out.CustomData = custom
	}
	return out
}
