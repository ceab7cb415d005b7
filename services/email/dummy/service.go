// Package dummymail collects rendered messages in memory for tests.
package dummymail

import (
	"sync"

	"github.com/hapiedu/hapi/core"
)

type Service struct {
	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*Service)(nil)

func NewService() *Service {
	return &Service{sent: make([]core.EmailMessage, 0)}
}

// SendMessages renders and records synchronously so tests can assert
// immediately after the call.
func (svc *Service) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, msg := range messages {
		_ = msg.Render()
		if msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments() || msg.Subject != "") {
			svc.sent = append(svc.sent, *msg)
		}
	}
}

func (svc *Service) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]core.EmailMessage, len(svc.sent))
	copy(out, svc.sent)
	return out
}

func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = svc.sent[:0]
}
