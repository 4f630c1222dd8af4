package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second, Multiplier: 1.5}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay < 0 {
		p.InitialDelay = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	return p
}

// Do runs fn until it succeeds, returns a non-transient error, or the
// attempts are exhausted.
func (p RetryPolicy) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	p = p.normalized()
	delay := p.InitialDelay

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == p.MaxAttempts {
			break
		}

		logrus.WithError(err).WithFields(logrus.Fields{
			"operation": operation,
			"attempt":   attempt,
			"delay":     delay.String(),
		}).Warn("gateway_call_retry")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return err
}

type statusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s failed: status=%d body=%s", e.Operation, e.StatusCode, e.Body)
}

func (e *statusError) Unwrap() error {
	return ErrGatewayRequest
}

// IsTransient reports whether err is a network-level failure or a 5xx from
// the gateway. Declines and 4xx responses are final.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	return false
}
