package dummymail

import (
	"sync"

	"github.com/youbihi/attest/core"
)

// Recorder records messages without sending anything; tests inspect the
// sent list to assert on dispatch behavior.
type Recorder struct {
	mu           sync.Mutex
	SentMessages []core.EmailMessage
}

var _ core.EmailService = (*Recorder)(nil)

func NewService() *Recorder {
	return &Recorder{}
}

func (svc *Recorder) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, msg := range messages {
		if msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments()) {
			svc.SentMessages = append(svc.SentMessages, *msg)
		}
	}
}

func (svc *Recorder) Sent() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]core.EmailMessage, len(svc.SentMessages))
	copy(out, svc.SentMessages)
	return out
}
