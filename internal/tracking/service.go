package tracking

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/angelmondragon/storefront-backend/pkg/conversions"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// Service forwards explicit events from the track-event function.
type Service interface {
	Enabled() bool
	PixelID() string
	Forward(ctx context.Context, event Event) (*conversions.Response, error)
}

// PixelSender is a Sender bound to one pixel.
type PixelSender interface {
	Sender
	PixelID() string
}

type service struct {
	sender  PixelSender
	metrics *metrics.StorefrontMetrics
	logg    *logger.Logger
}

// NewService builds the forwarding service. A nil sender yields a service
// that reports the integration as unavailable.
func NewService(sender PixelSender, m *metrics.StorefrontMetrics, logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{sender: sender, metrics: m, logg: logg}, nil
}

func (s *service) Enabled() bool {
	return s.sender != nil
}

func (s *service) PixelID() string {
	if s.sender == nil {
		return ""
	}
	return s.sender.PixelID()
}

func (s *service) Forward(ctx context.Context, event Event) (*conversions.Response, error) {
	if s.sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "event tracking is not configured")
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}

	name := event.Name.String()
	resp, err := s.sender.Send(ctx, event.Wire())
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			return nil, err
		}
		s.metrics.IncConversion(name, metrics.OutcomeFailed)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"event": name, "error": err.Error()}), "tracking.forward_failed")
		return nil, err
	}
	s.metrics.IncConversion(name, metrics.OutcomeSent)
	return resp, nil
}

func validateEvent(event Event) error {
	if !event.Name.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid event_name").
			WithDetails(map[string]any{"event_name": event.Name.String()})
	}
	if len(event.EventID) > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "event_id must be at most 100 characters")
	}
	if raw := strings.TrimSpace(event.SourceURL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "event_source_url must be a valid url")
		}
	}
	if event.Value != nil && event.Value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "value must not be negative")
	}
	if c := strings.TrimSpace(event.Currency); c != "" && !isCurrencyCode(c) {
		return pkgerrors.New(pkgerrors.CodeValidation, "currency must be a 3-letter code")
	}
	return nil
}

func isCurrencyCode(value string) bool {
	if len(value) != 3 {
		return false
	}
	for _, r := range value {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
