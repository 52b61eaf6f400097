package contact

import (
	"errors"

	"github.com/onegateway/site-notify/internal/domain"
)

// Sentinel errors for the contact service layer.
var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrMissingField     = domain.ErrMissingField
)
