// Package services holds the forum's business operations. Every error returned
// to callers is an *apperr.Error or wraps one.
package services

import (
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/librescript/backend/internal/apperr"
	"github.com/librescript/backend/internal/mail"
)

// Mailer queues outgoing mail without waiting for delivery.
type Mailer interface {
	Enqueue(msg mail.Message) bool
}

// lookupErr turns a failed single-row lookup into NotFound or Internal.
func lookupErr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Missing(format, args...)
	}
	return apperr.Wrap(apperr.Internal, err, "lookup failed: %s", fmt.Sprintf(format, args...))
}

func internal(err error, what string) error {
	return apperr.Wrap(apperr.Internal, err, "%s", what)
}

func defaultPolicy(p *bluemonday.Policy) *bluemonday.Policy {
	if p == nil {
		return bluemonday.UGCPolicy()
	}
	return p
}
