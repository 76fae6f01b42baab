package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lifelink/blood-donation-api/internal/model"
	"github.com/lifelink/blood-donation-api/internal/repository"
)

type mockAppointmentSource struct{ mock.Mock }

func (m *mockAppointmentSource) ListUpcomingBetween(ctx context.Context, from, to time.Time) ([]repository.AppointmentWithNames, error) {
	args := m.Called(ctx, from, to)
	if v := args.Get(0); v != nil {
		return v.([]repository.AppointmentWithNames), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, to, subject, htmlBody, recipientName string) bool {
	return m.Called(ctx, to, subject, htmlBody, recipientName).Bool(0)
}

func strptr(s string) *string { return &s }

func upcoming(email, name *string) repository.AppointmentWithNames {
	return repository.AppointmentWithNames{
		Appointment: model.Appointment{
			ID:     1,
			Date:   time.Date(2025, time.March, 11, 10, 0, 0, 0, time.UTC),
			Status: model.AppointmentScheduled,
		},
		UserEmail: email,
		UserName:  name,
	}
}

func TestRunQueriesTomorrowWindow(t *testing.T) {
	appts := &mockAppointmentSource{}
	sender := &mockSender{}
	job := NewReminderJob(appts, sender)
	job.now = func() time.Time {
		return time.Date(2025, time.March, 10, 16, 45, 0, 0, time.UTC)
	}

	from := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	appts.On("ListUpcomingBetween", mock.Anything, from, to).
		Return([]repository.AppointmentWithNames{}, nil).Once()

	sent, failed, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	appts.AssertExpectations(t)
}

func TestRunCountsSentAndFailed(t *testing.T) {
	appts := &mockAppointmentSource{}
	sender := &mockSender{}
	job := NewReminderJob(appts, sender)
	job.now = func() time.Time {
		return time.Date(2025, time.March, 10, 16, 45, 0, 0, time.UTC)
	}

	appts.On("ListUpcomingBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]repository.AppointmentWithNames{
			upcoming(strptr("a@example.com"), strptr("Ada")),
			upcoming(strptr("b@example.com"), nil),
			upcoming(nil, nil), // no account, skipped
		}, nil).Once()

	sender.On("Send", mock.Anything, "a@example.com", mock.Anything, mock.Anything, "Ada").
		Return(true).Once()
	sender.On("Send", mock.Anything, "b@example.com", mock.Anything, mock.Anything, "Donor").
		Return(false).Once()

	sent, failed, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)
	appts.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestRunPropagatesListError(t *testing.T) {
	appts := &mockAppointmentSource{}
	sender := &mockSender{}
	job := NewReminderJob(appts, sender)

	boom := errors.New("db down")
	appts.On("ListUpcomingBetween", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, boom).Once()

	_, _, err := job.Run(context.Background())

	assert.ErrorIs(t, err, boom)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
