package stats

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Stats tracks what the bot has done since startup. Exposed by /about.
type Stats struct {
	startedAt time.Time

	VideosPosted       *atomic.Int64
	WhitelistSucceeded *atomic.Int64
	WhitelistFailed    *atomic.Int64

	commands map[string]*atomic.Int64
	mut      sync.RWMutex
}

func New() *Stats {
	return &Stats{
		startedAt:          time.Now(),
		VideosPosted:       atomic.NewInt64(0),
		WhitelistSucceeded: atomic.NewInt64(0),
		WhitelistFailed:    atomic.NewInt64(0),
		commands:           map[string]*atomic.Int64{},
	}
}

func (s *Stats) IncrementCommand(name string) {
	s.mut.Lock()
	defer s.mut.Unlock()

	count, ok := s.commands[name]
	if !ok {
		count = atomic.NewInt64(0)
		s.commands[name] = count
	}

	count.Inc()
}

// CommandsExecuted returns the total across all commands.
func (s *Stats) CommandsExecuted() int64 {
	s.mut.RLock()
	defer s.mut.RUnlock()

	var total int64
	for _, count := range s.commands {
		total += count.Load()
	}

	return total
}

func (s *Stats) Uptime() time.Duration {
	return time.Since(s.startedAt)
}
