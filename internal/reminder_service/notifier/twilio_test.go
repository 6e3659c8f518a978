package notifier

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaremind/golang_services/internal/reminder_service/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNotifier(t *testing.T, handler http.HandlerFunc) (*TwilioNotifier, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	notifier, err := NewTwilioNotifier(testLogger(), TwilioConfig{
		AccountSID: "ACxxxx",
		AuthToken:  "secret-token",
		FromNumber: "+15550009999",
		BaseURL:    server.URL,
	}, server.Client())
	require.NoError(t, err)
	return notifier, server
}

func TestNewTwilioNotifierRequiresCredentials(t *testing.T) {
	_, err := NewTwilioNotifier(testLogger(), TwilioConfig{FromNumber: "+15550009999"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWILIO_ACCOUNT_SID")

	_, err = NewTwilioNotifier(testLogger(), TwilioConfig{AccountSID: "AC", AuthToken: "tok"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWILIO_FROM_NUMBER")
}

func TestTwilioNotifierSendSMS(t *testing.T) {
	var gotPath string
	var gotForm map[string]string
	notifier, _ := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"To":   r.PostFormValue("To"),
			"From": r.PostFormValue("From"),
			"Body": r.PostFormValue("Body"),
		}
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ACxxxx", user)
		assert.Equal(t, "secret-token", pass)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid": "SM123", "status": "queued"}`))
	})

	result := notifier.Send(context.Background(), SendRequest{
		To:          "4377784991",
		Title:       "Release sign-off",
		Description: "Build 1.4.2",
		Method:      domain.MethodSMS,
	})

	assert.True(t, result.Success)
	assert.Equal(t, "SM123", result.ProviderRef)
	assert.Equal(t, "/2010-04-01/Accounts/ACxxxx/Messages.json", gotPath)
	assert.Equal(t, "+14377784991", gotForm["To"])
	assert.Equal(t, "+15550009999", gotForm["From"])
	assert.Equal(t, "QA Reminder: Release sign-off\n\nBuild 1.4.2", gotForm["Body"])
}

func TestTwilioNotifierMakeCall(t *testing.T) {
	var gotPath string
	var gotTwiml string
	notifier, _ := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotTwiml = r.PostFormValue("Twiml")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid": "CA456", "status": "queued"}`))
	})

	result := notifier.Send(context.Background(), SendRequest{
		To:     "+14377784991",
		Title:  "Standup",
		Method: domain.MethodCall,
	})

	assert.True(t, result.Success)
	assert.Equal(t, "CA456", result.ProviderRef)
	assert.Equal(t, "/2010-04-01/Accounts/ACxxxx/Calls.json", gotPath)
	assert.Contains(t, gotTwiml, `<Say voice="alice">This is a Q A reminder for: Standup.</Say>`)
}

func TestTwilioNotifierDeliveryFailureIsNotAnError(t *testing.T) {
	notifier, _ := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": 21211, "message": "The 'To' number is not a valid phone number."}`))
	})

	result := notifier.Send(context.Background(), SendRequest{
		To:     "0000000000",
		Title:  "Broken destination",
		Method: domain.MethodSMS,
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "not a valid phone number")
}

func TestTwilioNotifierRejectsUnknownMethod(t *testing.T) {
	notifier, _ := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no HTTP call expected for an invalid method")
	})

	result := notifier.Send(context.Background(), SendRequest{
		To:     "+14377784991",
		Title:  "Bad method",
		Method: domain.NotificationMethod("carrier-pigeon"),
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "invalid notification method")
}
