package discord

import (
	"context"
	"sync"
	"time"
)

const (
	yesEmoji = "✅"
	noEmoji  = "❌"
)

// Prompts tracks yes/no questions waiting for a reaction from one user.
type Prompts struct {
	mu      sync.Mutex
	pending map[string]*Pending
}

func NewPrompts() *Prompts {
	return &Prompts{pending: make(map[string]*Pending)}
}

// Pending is one open question.
type Pending struct {
	prompts   *Prompts
	messageID string
	userID    string
	answer    chan bool
}

// Expect registers the question posted as messageID. Register before adding
// the reactions so that an early answer is not lost.
func (p *Prompts) Expect(messageID, userID string) *Pending {
	pd := &Pending{prompts: p, messageID: messageID, userID: userID, answer: make(chan bool, 1)}
	p.mu.Lock()
	p.pending[messageID] = pd
	p.mu.Unlock()
	return pd
}

// Resolve delivers a reaction. It reports whether the reaction answered an
// open question; reactions from anyone but the asked user are ignored.
func (p *Prompts) Resolve(messageID, userID, emoji string) bool {
	if emoji != yesEmoji && emoji != noEmoji {
		return false
	}
	p.mu.Lock()
	pd, ok := p.pending[messageID]
	if !ok || pd.userID != userID {
		p.mu.Unlock()
		return false
	}
	delete(p.pending, messageID)
	p.mu.Unlock()

	pd.answer <- emoji == yesEmoji
	return true
}

func (p *Prompts) forget(messageID string) {
	p.mu.Lock()
	delete(p.pending, messageID)
	p.mu.Unlock()
}

// Wait blocks until the answer arrives. Timeout and ctx cancellation count as no.
func (pd *Pending) Wait(ctx context.Context, timeout time.Duration) bool {
	defer pd.prompts.forget(pd.messageID)
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case yes := <-pd.answer:
		return yes
	case <-t.C:
		return false
	case <-ctx.Done():
		return false
	}
}
