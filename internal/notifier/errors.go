package notifier

import "errors"

var (
	ErrTransportDisabled   = errors.New("transport disabled")
	ErrInvalidCredentials  = errors.New("invalid service account credentials")
	ErrTokenExchange       = errors.New("access token exchange failed")
	ErrDeliveryRejected    = errors.New("delivery rejected by upstream")
	ErrInvalidSubscription = errors.New("invalid push subscription")
)
