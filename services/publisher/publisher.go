package publisher

// Publisher represents a service for mirroring published offers to a
// stream for downstream consumers
type Publisher interface {
	// Publish appends a message to the stream
	Publish(message []byte) error

	// TrimStream trims the stream to the configured maximum length
	TrimStream() error

	// Close closes the publisher connection
	Close() error
}
