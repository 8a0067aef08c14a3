package publisher

// Publisher represents a service for publishing scrape results
type Publisher interface {
	// Publish publishes a message under key
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}

// Nop discards messages, used when PUBLISHER=none
type Nop struct{}

func (Nop) Publish(key string, message []byte) error { return nil }
func (Nop) TrimStreams() error                       { return nil }
func (Nop) Close() error                             { return nil }
