package reminders_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/lifedash/internal/reminders"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testReminder = reminders.Reminder{
	RuleID:  "water",
	Kind:    reminders.KindInterval,
	Title:   "Drink water",
	Body:    "It has been 120 minutes.",
	FiredAt: t0,
}

type recordingNotifier struct {
	received []reminders.Reminder
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, r reminders.Reminder) error {
	n.received = append(n.received, r)
	return n.err
}

func TestWebhookNotifier(t *testing.T) {
	var got reminders.Reminder
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := reminders.NewWebhookNotifier(srv.URL, srv.Client())
	require.NoError(t, n.Notify(context.Background(), testReminder))
	assert.Equal(t, testReminder.Title, got.Title)
	assert.True(t, testReminder.FiredAt.Equal(got.FiredAt))
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := reminders.NewWebhookNotifier(srv.URL, nil)
	assert.ErrorContains(t, n.Notify(context.Background(), testReminder), "status 502")
}

func TestRedisNotifier(t *testing.T) {
	db, mock := redismock.NewClientMock()
	n := reminders.NewRedisNotifier(db, "lifedash:reminders")

	payload, err := json.Marshal(testReminder)
	require.NoError(t, err)

	mock.ExpectPublish("lifedash:reminders", payload).SetVal(1)
	require.NoError(t, n.Notify(context.Background(), testReminder))

	mock.ExpectPublish("lifedash:reminders", payload).SetErr(errors.New("closed"))
	assert.Error(t, n.Notify(context.Background(), testReminder))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMultiNotifier(t *testing.T) {
	ok := &recordingNotifier{}
	failing := &recordingNotifier{err: errors.New("unreachable")}

	multi := reminders.MultiNotifier{failing, nil, ok, reminders.LogNotifier{}}
	err := multi.Notify(context.Background(), testReminder)
	assert.EqualError(t, err, "unreachable")
	assert.Len(t, ok.received, 1)
	assert.Len(t, failing.received, 1)
}
