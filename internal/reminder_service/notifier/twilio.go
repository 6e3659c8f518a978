package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/qaremind/golang_services/internal/reminder_service/domain"
)

// TwilioConfig carries the transport credentials. All three identifiers are
// required; BaseURL is overridable for tests and defaults to the public API.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
}

// TwilioNotifier dispatches reminders through the Twilio REST API,
// as SMS messages or voice calls depending on the notification method.
type TwilioNotifier struct {
	logger     *slog.Logger
	httpClient *http.Client
	config     TwilioConfig
}

// NewTwilioNotifier validates credentials up front: missing credentials are
// an initialization-time hard failure, not a per-send one.
func NewTwilioNotifier(logger *slog.Logger, config TwilioConfig, httpClient *http.Client) (*TwilioNotifier, error) {
	if config.AccountSID == "" || config.AuthToken == "" {
		return nil, fmt.Errorf("missing Twilio credentials: TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN required")
	}
	if config.FromNumber == "" {
		return nil, fmt.Errorf("missing TWILIO_FROM_NUMBER")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.twilio.com"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &TwilioNotifier{
		logger:     logger.With("notifier", "twilio"),
		httpClient: httpClient,
		config:     config,
	}, nil
}

// twilioResourceResponse covers the fields we read from both the Messages and
// Calls resources.
type twilioResourceResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (n *TwilioNotifier) Send(ctx context.Context, req SendRequest) SendResult {
	to := NormalizePhoneNumber(req.To)

	switch req.Method {
	case domain.MethodCall:
		return n.makeCall(ctx, to, req)
	case domain.MethodSMS, "":
		return n.sendSMS(ctx, to, req)
	default:
		n.logger.WarnContext(ctx, "Unknown notification method", "method", req.Method)
		return SendResult{Success: false, ErrorMessage: fmt.Sprintf("invalid notification method: %s", req.Method)}
	}
}

func (n *TwilioNotifier) sendSMS(ctx context.Context, to string, req SendRequest) SendResult {
	body := "QA Reminder: " + req.Title
	if req.Description != "" {
		body += "\n\n" + req.Description
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", n.config.FromNumber)
	form.Set("Body", body)

	n.logger.InfoContext(ctx, "Sending SMS via Twilio", "to", to)
	return n.post(ctx, "Messages", form)
}

var twimlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")

func (n *TwilioNotifier) makeCall(ctx context.Context, to string, req SendRequest) SendResult {
	voiceMessage := fmt.Sprintf("This is a Q A reminder for: %s.", req.Title)
	if req.Description != "" {
		voiceMessage += " Additional details: " + req.Description
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", n.config.FromNumber)
	form.Set("Twiml", fmt.Sprintf(`<Response><Say voice="alice">%s</Say></Response>`, twimlEscaper.Replace(voiceMessage)))

	n.logger.InfoContext(ctx, "Initiating voice call via Twilio", "to", to)
	return n.post(ctx, "Calls", form)
}

// post performs the authenticated form POST against a Twilio account resource
// and maps the response into a SendResult. Transport and API failures are
// delivery failures, not errors: the scheduler records them on the reminder.
func (n *TwilioNotifier) post(ctx context.Context, resource string, form url.Values) SendResult {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/%s.json", n.config.BaseURL, n.config.AccountSID, resource)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to build Twilio request", "error", err, "resource", resource)
		return SendResult{Success: false, ErrorMessage: fmt.Sprintf("build request: %v", err)}
	}
	httpReq.SetBasicAuth(n.config.AccountSID, n.config.AuthToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := n.httpClient.Do(httpReq)
	if err != nil {
		n.logger.ErrorContext(ctx, "Twilio request failed", "error", err, "resource", resource)
		return SendResult{Success: false, ErrorMessage: fmt.Sprintf("twilio request: %v", err)}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to read Twilio response", "error", err, "status_code", httpResp.StatusCode)
		return SendResult{Success: false, ErrorMessage: fmt.Sprintf("read twilio response (status %d): %v", httpResp.StatusCode, err)}
	}

	var parsed twilioResourceResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil && httpResp.StatusCode < 300 {
		// HTTP-level success with an unparseable body: treat as delivered,
		// just without a provider reference.
		n.logger.WarnContext(ctx, "Unparseable Twilio success response", "status_code", httpResp.StatusCode, "error", err)
		return SendResult{Success: true}
	}

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		n.logger.InfoContext(ctx, "Twilio dispatch accepted", "resource", resource, "provider_sid", parsed.SID, "provider_status", parsed.Status)
		return SendResult{Success: true, ProviderRef: parsed.SID}
	}

	errMsg := parsed.Message
	if errMsg == "" {
		errMsg = fmt.Sprintf("twilio API error: status %d", httpResp.StatusCode)
	}
	n.logger.WarnContext(ctx, "Twilio dispatch rejected", "resource", resource, "status_code", httpResp.StatusCode, "twilio_code", parsed.Code, "message", errMsg)
	return SendResult{Success: false, ErrorMessage: errMsg}
}
