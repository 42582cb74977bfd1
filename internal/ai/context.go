package ai

import (
	"sync"
	"time"
)

// Exchange is one question and its answer in the report panel.
type Exchange struct {
	Question string
	Answer   AnalysisResponse
	Err      error
	AskedAt  time.Time
}

// Conversation keeps an ordered history of exchanges, trimming the oldest
// entries when the limit is reached. The first exchange is kept as the
// session's opening context.
type Conversation struct {
	mu           sync.Mutex
	exchanges    []Exchange
	maxExchanges int
}

// NewConversation creates a conversation holding at most maxExchanges
// entries; a non-positive value means 20.
func NewConversation(maxExchanges int) *Conversation {
	if maxExchanges <= 0 {
		maxExchanges = 20
	}
	return &Conversation{
		exchanges:    make([]Exchange, 0, maxExchanges),
		maxExchanges: maxExchanges,
	}
}

// Add appends an exchange to the history.
func (c *Conversation) Add(e Exchange) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.exchanges = append(c.exchanges, e)

	if len(c.exchanges) > c.maxExchanges {
		trimmed := make([]Exchange, 0, c.maxExchanges)
		trimmed = append(trimmed, c.exchanges[0])
		excess := len(c.exchanges) - c.maxExchanges
		trimmed = append(trimmed, c.exchanges[1+excess:]...)
		c.exchanges = trimmed
	}
}

// Exchanges returns a copy of the history.
func (c *Conversation) Exchanges() []Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]Exchange, len(c.exchanges))
	copy(result, c.exchanges)
	return result
}

// Reset clears the history.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.exchanges = c.exchanges[:0]
}
