package enums

import "fmt"

// TrackingEvent enumerates the conversion events forwarded server-side.
type TrackingEvent string

const (
	TrackingEventPageView         TrackingEvent = "PageView"
	TrackingEventViewContent      TrackingEvent = "ViewContent"
	TrackingEventAddToCart        TrackingEvent = "AddToCart"
	TrackingEventInitiateCheckout TrackingEvent = "InitiateCheckout"
	TrackingEventPurchase         TrackingEvent = "Purchase"
	TrackingEventLead             TrackingEvent = "Lead"
)

var validTrackingEvents = []TrackingEvent{
	TrackingEventPageView,
	TrackingEventViewContent,
	TrackingEventAddToCart,
	TrackingEventInitiateCheckout,
	TrackingEventPurchase,
	TrackingEventLead,
}

// String implements fmt.Stringer.
func (e TrackingEvent) String() string {
	return string(e)
}

// IsValid reports whether the value is a known TrackingEvent.
func (e TrackingEvent) IsValid() bool {
	for _, candidate := range validTrackingEvents {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseTrackingEvent converts raw input into a TrackingEvent.
func ParseTrackingEvent(value string) (TrackingEvent, error) {
	for _, candidate := range validTrackingEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tracking event %q", value)
}
