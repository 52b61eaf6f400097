package notify

import (
	"errors"
	"fmt"
)

// ErrDelivery is matched by every DeliveryError via errors.Is.
var ErrDelivery = errors.New("notification delivery failed")

// DeliveryError reports a failed bot API call. StatusCode is 0 when the
// request never got a response.
type DeliveryError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("Telegram notification failed: %v", e.Err)
	}
	return fmt.Sprintf("Telegram notification failed: %d - %s", e.StatusCode, e.Body)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDelivery) match any DeliveryError.
func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }
