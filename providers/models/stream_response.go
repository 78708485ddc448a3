package models

// StreamResponse is one message on a provider's response channel.
type StreamResponse struct {
	Content string
	Err     error
	Done    bool
}
