package notifier

import "github.com/faziolifabrizio-jpg/risparmioevoluto/internal/offer"

// Notifier represents a service for delivering offers to a channel
type Notifier interface {
	// PublishOffer delivers a single normalized offer
	PublishOffer(o offer.Offer) error

	// PublishText delivers a plain status message
	PublishText(text string) error
}
