package conversions

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Event is one conversion event in the upstream wire shape.
type Event struct {
	EventName      string      `json:"event_name"`
	EventTime      int64       `json:"event_time"`
	EventID        string      `json:"event_id,omitempty"`
	EventSourceURL string      `json:"event_source_url,omitempty"`
	ActionSource   string      `json:"action_source"`
	UserData       UserData    `json:"user_data"`
	CustomData     *CustomData `json:"custom_data,omitempty"`
}

// UserData holds matching keys. Personal fields must already be hashed with
// the helpers in this package; client ip, user agent and browser ids are sent
// as-is.
type UserData struct {
	Emails     []string `json:"em,omitempty"`
	Phones     []string `json:"ph,omitempty"`
	FirstNames []string `json:"fn,omitempty"`
	Cities     []string `json:"ct,omitempty"`
	ExternalID []string `json:"external_id,omitempty"`
	ClientIP   string   `json:"client_ip_address,omitempty"`
	UserAgent  string   `json:"client_user_agent,omitempty"`
	FBP        string   `json:"fbp,omitempty"`
	FBC        string   `json:"fbc,omitempty"`
}

// CustomData carries commerce details for the event.
type CustomData struct {
	Value       *float64 `json:"value,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	ContentIDs  []string `json:"content_ids,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
	ContentName string   `json:"content_name,omitempty"`
	NumItems    int      `json:"num_items,omitempty"`
	OrderID     string   `json:"order_id,omitempty"`
}

// Response is the upstream acknowledgement.
type Response struct {
	EventsReceived int      `json:"events_received"`
	Messages       []string `json:"messages,omitempty"`
	FBTraceID      string   `json:"fbtrace_id,omitempty"`
}

func (e *Event) normalize() {
	e.EventName = strings.TrimSpace(e.EventName)
	if e.EventTime == 0 {
		e.EventTime = time.Now().Unix()
	}
	if e.ActionSource == "" {
		e.ActionSource = actionSourceWebsite
	}
	if e.CustomData != nil {
		e.CustomData.Currency = strings.ToUpper(strings.TrimSpace(e.CustomData.Currency))
	}
}

// Validate checks the fields the upstream API rejects.
func (e Event) Validate() error {
	if e.EventName == "" {
		return errors.New("event_name is required")
	}
	if len(e.EventID) > maxEventIDLength {
		return fmt.Errorf("event_id must be at most %d characters", maxEventIDLength)
	}
	if e.EventSourceURL != "" {
		u, err := url.Parse(e.EventSourceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New("event_source_url must be an absolute http(s) url")
		}
	}
	if e.CustomData != nil {
		if e.CustomData.Value != nil && *e.CustomData.Value < 0 {
			return errors.New("custom_data.value must not be negative")
		}
		if c := e.CustomData.Currency; c != "" && len(c) != 3 {
			return errors.New("custom_data.currency must be a 3-letter code")
		}
	}
	return nil
}
