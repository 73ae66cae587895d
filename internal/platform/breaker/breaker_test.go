package breaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestBreakerTripsAfterFailures(t *testing.T) {
	cb := New(Config{Name: "test", MinRequests: 3})
	fail := errors.New("down")

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, fail })
		assert.ErrorIs(t, err, fail)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	_, err := cb.Execute(func() (interface{}, error) { return "ok", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreakerStaysClosedBelowMinimum(t *testing.T) {
	cb := New(Config{Name: "test"})
	_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("x") })
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
