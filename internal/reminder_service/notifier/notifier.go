package notifier

import (
	"context"

	"github.com/qaremind/golang_services/internal/reminder_service/domain"
)

// SendRequest describes a single reminder notification to deliver.
type SendRequest struct {
	To          string
	Title       string
	Description string
	Method      domain.NotificationMethod
}

// SendResult reports the delivery outcome. Ordinary delivery failures (bad
// number, carrier rejection) surface as Success=false with an ErrorMessage,
// never as a panic or transport-layer error to the caller.
type SendResult struct {
	Success      bool
	ProviderRef  string
	ErrorMessage string
}

// Notifier sends a single notification via the reminder's chosen method.
type Notifier interface {
	Send(ctx context.Context, req SendRequest) SendResult
}
