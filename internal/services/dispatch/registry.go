package dispatch

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/models"
)

// UnknownChannelError is returned when a job names a channel no publisher
// has been registered for.
type UnknownChannelError struct {
	Channel models.Channel
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("no publisher registered for channel %q", e.Channel)
}

// Registry maps channels to their publishers. Registration happens during
// startup wiring; lookups happen on every run, so reads take the cheap path.
type Registry struct {
	mu         sync.RWMutex
	publishers map[models.Channel]interfaces.Publisher
}

func NewRegistry() *Registry {
	return &Registry{
		publishers: make(map[models.Channel]interfaces.Publisher),
	}
}

// Register binds a publisher to a channel, replacing any previous binding.
func (r *Registry) Register(channel models.Channel, publisher interfaces.Publisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishers[channel] = publisher
}

// Get returns the publisher for a channel or an UnknownChannelError.
func (r *Registry) Get(channel models.Channel) (interfaces.Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pub, ok := r.publishers[channel]
	if !ok {
		return nil, &UnknownChannelError{Channel: channel}
	}
	return pub, nil
}

// Channels lists the registered channels in stable order.
func (r *Registry) Channels() []models.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channels := make([]models.Channel, 0, len(r.publishers))
	for ch := range r.publishers {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })
	return channels
}
