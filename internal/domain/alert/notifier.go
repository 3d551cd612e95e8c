package alert

import (
	"context"
	"sync"

	"github.com/dentalos/clinic/internal/platform/mailer"
)

// Action reports what MaybeNotify decided to do.
type Action string

const (
	// ActionSent means an alert email went out and the doctor moved to Sent.
	ActionSent Action = "sent"
	// ActionAlreadySent means the gate was closed for this armed period.
	ActionAlreadySent Action = "already_sent"
	// ActionNoEmail means no alert address is configured.
	ActionNoEmail Action = "no_email"
	// ActionDisabled means the caller has alerts switched off.
	ActionDisabled Action = "disabled"
	// ActionRearmed means the expiring set is empty and the gate reopened.
	ActionRearmed Action = "rearmed"
)

// Notifier sends the expiry alert email at most once per armed period per
// doctor. The sent flag is process-local state, reset whenever stock or the
// alert address changes, or the expiring set drains.
type Notifier struct {
	sender mailer.EmailSender

	mu   sync.Mutex
	sent map[string]bool
}

func NewNotifier(sender mailer.EmailSender) *Notifier {
	return &Notifier{sender: sender, sent: make(map[string]bool)}
}

// MaybeNotify runs one step of the per-doctor state machine.
func (n *Notifier) MaybeNotify(ctx context.Context, doctorEmail, recipient string, enabled bool, daysThreshold int, items []ExpiringItem) (Action, error) {
	if len(items) == 0 {
		n.Reset(doctorEmail)
		return ActionRearmed, nil
	}
	if !enabled {
		return ActionDisabled, nil
	}
	if recipient == "" {
		return ActionNoEmail, nil
	}

	n.mu.Lock()
	alreadySent := n.sent[doctorEmail]
	n.mu.Unlock()
	if alreadySent {
		return ActionAlreadySent, nil
	}

	subject, body := BuildEmail(daysThreshold, items)
	if err := n.sender.SendEmail(ctx, recipient, subject, body); err != nil {
		return "", err
	}

	n.mu.Lock()
	n.sent[doctorEmail] = true
	n.mu.Unlock()
	return ActionSent, nil
}

// SendDirect sends the alert email without consulting or changing the sent
// gate. Used for manual test sends.
func (n *Notifier) SendDirect(ctx context.Context, recipient string, daysThreshold int, items []ExpiringItem) error {
	subject, body := BuildEmail(daysThreshold, items)
	return n.sender.SendEmail(ctx, recipient, subject, body)
}

// Reset re-arms the doctor's alert gate.
func (n *Notifier) Reset(doctorEmail string) {
	n.mu.Lock()
	delete(n.sent, doctorEmail)
	n.mu.Unlock()
}
