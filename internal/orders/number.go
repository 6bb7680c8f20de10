package orders

import (
	"context"
	"crypto/rand"
	"fmt"
)

const (
	orderNumberPrefix   = "SF-"
	orderNumberLength   = 8
	orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	orderNumberAttempts = 5
)

// NewOrderNumber returns a random SF-XXXXXXXX order number. The alphabet
// omits characters that are easy to misread over the phone.
func NewOrderNumber() (string, error) {
	buf := make([]byte, orderNumberLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return orderNumberPrefix + string(buf), nil
}

// AssignNumber draws order numbers until one is unused in repo.
func AssignNumber(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		number, err := NewOrderNumber()
		if err != nil {
			return "", err
		}
		taken, err := repo.OrderNumberTaken(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
	return "", fmt.Errorf("no free order number after %d attempts", orderNumberAttempts)
}
