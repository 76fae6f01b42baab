package lifecycle

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

type mockRequestStore struct{ mock.Mock }

func (m *mockRequestStore) Create(ctx context.Context, name, email, bloodGroup string, quantity uint32) (model.Request, error) {
	args := m.Called(ctx, name, email, bloodGroup, quantity)
	return args.Get(0).(model.Request), args.Error(1)
}
func (m *mockRequestStore) GetByID(ctx context.Context, id uint64) (model.Request, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Request), args.Error(1)
}
func (m *mockRequestStore) UpdateStatus(ctx context.Context, id uint64, status string, fulfilledBy *uint64) error {
	return m.Called(ctx, id, status, fulfilledBy).Error(0)
}
func (m *mockRequestStore) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockDonorStore struct{ mock.Mock }

func (m *mockDonorStore) GetByID(ctx context.Context, id uint64) (model.Donor, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Donor), args.Error(1)
}
func (m *mockDonorStore) UpdateDonationStats(ctx context.Context, id uint64, donations uint32, last time.Time) error {
	return m.Called(ctx, id, donations, last).Error(0)
}

type mockAppointmentStore struct{ mock.Mock }

func (m *mockAppointmentStore) Create(ctx context.Context, a model.Appointment) (uint64, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(uint64), args.Error(1)
}
func (m *mockAppointmentStore) FindFulfilledForDonorSince(ctx context.Context, donorID uint64, since time.Time) (model.Appointment, error) {
	args := m.Called(ctx, donorID, since)
	return args.Get(0).(model.Appointment), args.Error(1)
}
func (m *mockAppointmentStore) CancelFulfilled(ctx context.Context, donorID uint64, userID *uint64, since time.Time) error {
	return m.Called(ctx, donorID, userID, since).Error(0)
}

type mockUserDirectory struct{ mock.Mock }

func (m *mockUserDirectory) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, to, subject, htmlBody, recipientName string) bool {
	return m.Called(ctx, to, subject, htmlBody, recipientName).Bool(0)
}

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) Record(ctx context.Context, adminID uint64, adminEmail, action, targetModel, targetID string) error {
	return m.Called(ctx, adminID, adminEmail, action, targetModel, targetID).Error(0)
}

type fixture struct {
	requests *mockRequestStore
	donors   *mockDonorStore
	appts    *mockAppointmentStore
	users    *mockUserDirectory
	sender   *mockSender
	audit    *mockRecorder
	mgr      *Manager
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		requests: &mockRequestStore{},
		donors:   &mockDonorStore{},
		appts:    &mockAppointmentStore{},
		users:    &mockUserDirectory{},
		sender:   &mockSender{},
		audit:    &mockRecorder{},
		now:      time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC),
	}
	f.mgr = NewManager(f.requests, f.donors, f.appts, f.users, f.sender, f.audit)
	f.mgr.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) assertAll(t *testing.T) {
	t.Helper()
	f.requests.AssertExpectations(t)
	f.donors.AssertExpectations(t)
	f.appts.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.sender.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

var actor = Actor{ID: 7, Email: "admin@lifelink.org", Role: "ADMIN"}

func pendingRequest() model.Request {
	return model.Request{
		ID:               42,
		RequesterName:    "Jordan Lee",
		RequesterEmail:   "jordan@example.com",
		BloodGroupNeeded: "O+",
		Quantity:         2,
		Status:           model.RequestPending,
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.SetStatus(context.Background(), actor, 42, "delivered", nil)

	assert.ErrorIs(t, err, ErrInvalidStatus)
	f.requests.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestSetStatusUnknownRequest(t *testing.T) {
	f := newFixture(t)
	f.requests.On("GetByID", mock.Anything, uint64(42)).
		Return(model.Request{}, repository.ErrRequestNotFound).Once()

	_, err := f.mgr.SetStatus(context.Background(), actor, 42, model.RequestCancelled, nil)

	assert.ErrorIs(t, err, repository.ErrRequestNotFound)
	f.assertAll(t)
}

func TestFulfillCreditsDonorAndCreatesAppointment(t *testing.T) {
	f := newFixture(t)
	donorID := uint64(3)
	prior := pendingRequest()
	updated := prior
	updated.Status = model.RequestFulfilled
	updated.FulfilledBy = &donorID

	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(prior, nil).Once()
	f.requests.On("UpdateStatus", mock.Anything, uint64(42), model.RequestFulfilled, &donorID).Return(nil).Once()
	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(updated, nil).Once()

	f.donors.On("GetByID", mock.Anything, donorID).
		Return(model.Donor{ID: donorID, Donations: 4}, nil).Once()
	f.donors.On("UpdateDonationStats", mock.Anything, donorID, uint32(5), f.now).Return(nil).Once()

	dayStart := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	f.appts.On("FindFulfilledForDonorSince", mock.Anything, donorID, dayStart).
		Return(model.Appointment{}, repository.ErrAppointmentNotFound).Once()
	f.users.On("GetByEmail", mock.Anything, "jordan@example.com").
		Return(model.User{ID: 9, Email: "jordan@example.com"}, nil).Once()
	f.appts.On("Create", mock.Anything, mock.MatchedBy(func(a model.Appointment) bool {
		return a.Status == model.AppointmentFulfilled &&
			a.DonorID != nil && *a.DonorID == donorID &&
			a.UserID != nil && *a.UserID == 9 &&
			a.Date.Equal(f.now)
	})).Return(uint64(100), nil).Once()

	f.sender.On("Send", mock.Anything, "jordan@example.com", mock.Anything, mock.Anything, "Jordan Lee").
		Return(true).Once()
	f.audit.On("Record", mock.Anything, actor.ID, actor.Email, "UPDATE", "Request", "42").
		Return(nil).Once()

	got, err := f.mgr.SetStatus(context.Background(), actor, 42, model.RequestFulfilled, &donorID)

	require.NoError(t, err)
	assert.Equal(t, model.RequestFulfilled, got.Status)
	require.NotNil(t, got.FulfilledBy)
	assert.Equal(t, donorID, *got.FulfilledBy)
	f.assertAll(t)
}

func TestFulfillSkipsAppointmentWhenOneExistsToday(t *testing.T) {
	f := newFixture(t)
	donorID := uint64(3)
	prior := pendingRequest()
	updated := prior
	updated.Status = model.RequestFulfilled
	updated.FulfilledBy = &donorID

	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(prior, nil).Once()
	f.requests.On("UpdateStatus", mock.Anything, uint64(42), model.RequestFulfilled, &donorID).Return(nil).Once()
	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(updated, nil).Once()

	f.donors.On("GetByID", mock.Anything, donorID).Return(model.Donor{ID: donorID}, nil).Once()
	f.donors.On("UpdateDonationStats", mock.Anything, donorID, uint32(1), f.now).Return(nil).Once()

	// An appointment already recorded today suppresses the create.
	f.appts.On("FindFulfilledForDonorSince", mock.Anything, donorID, mock.Anything).
		Return(model.Appointment{ID: 55, Status: model.AppointmentFulfilled}, nil).Once()

	f.sender.On("Send", mock.Anything, "jordan@example.com", mock.Anything, mock.Anything, "Jordan Lee").
		Return(true).Once()
	f.audit.On("Record", mock.Anything, actor.ID, actor.Email, "UPDATE", "Request", "42").
		Return(nil).Once()

	_, err := f.mgr.SetStatus(context.Background(), actor, 42, model.RequestFulfilled, &donorID)

	require.NoError(t, err)
	f.appts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestCancelFromFulfilledCancelsAppointmentWithoutDecrement(t *testing.T) {
	f := newFixture(t)
	donorID := uint64(3)
	prior := pendingRequest()
	prior.Status = model.RequestFulfilled
	prior.FulfilledBy = &donorID
	updated := prior
	updated.Status = model.RequestCancelled

	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(prior, nil).Once()
	f.requests.On("UpdateStatus", mock.Anything, uint64(42), model.RequestCancelled, (*uint64)(nil)).Return(nil).Once()
	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(updated, nil).Once()

	userID := uint64(9)
	f.users.On("GetByEmail", mock.Anything, "jordan@example.com").
		Return(model.User{ID: userID}, nil).Once()
	dayStart := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	f.appts.On("CancelFulfilled", mock.Anything, donorID, &userID, dayStart).Return(nil).Once()

	f.sender.On("Send", mock.Anything, "jordan@example.com", mock.Anything, mock.Anything, "Jordan Lee").
		Return(true).Once()
	f.audit.On("Record", mock.Anything, actor.ID, actor.Email, "UPDATE", "Request", "42").
		Return(nil).Once()

	got, err := f.mgr.SetStatus(context.Background(), actor, 42, model.RequestCancelled, nil)

	require.NoError(t, err)
	assert.Equal(t, model.RequestCancelled, got.Status)
	// Donations are never decremented on cancellation.
	f.donors.AssertNotCalled(t, "UpdateDonationStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestCancelFromPendingHasNoAppointmentSideEffect(t *testing.T) {
	f := newFixture(t)
	prior := pendingRequest()
	updated := prior
	updated.Status = model.RequestCancelled

	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(prior, nil).Once()
	f.requests.On("UpdateStatus", mock.Anything, uint64(42), model.RequestCancelled, (*uint64)(nil)).Return(nil).Once()
	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(updated, nil).Once()

	f.sender.On("Send", mock.Anything, "jordan@example.com", mock.Anything, mock.Anything, "Jordan Lee").
		Return(true).Once()
	f.audit.On("Record", mock.Anything, actor.ID, actor.Email, "UPDATE", "Request", "42").
		Return(nil).Once()

	_, err := f.mgr.SetStatus(context.Background(), actor, 42, model.RequestCancelled, nil)

	require.NoError(t, err)
	f.appts.AssertNotCalled(t, "CancelFulfilled", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestSideEffectFailuresAreSwallowed(t *testing.T) {
	f := newFixture(t)
	donorID := uint64(3)
	prior := pendingRequest()
	updated := prior
	updated.Status = model.RequestFulfilled
	updated.FulfilledBy = &donorID

	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(prior, nil).Once()
	f.requests.On("UpdateStatus", mock.Anything, uint64(42), model.RequestFulfilled, &donorID).Return(nil).Once()
	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(updated, nil).Once()

	boom := errors.New("db down")
	f.donors.On("GetByID", mock.Anything, donorID).Return(model.Donor{}, boom).Once()
	f.appts.On("FindFulfilledForDonorSince", mock.Anything, donorID, mock.Anything).
		Return(model.Appointment{}, repository.ErrAppointmentNotFound).Once()
	f.users.On("GetByEmail", mock.Anything, "jordan@example.com").
		Return(model.User{}, errors.New("no account")).Once()
	f.appts.On("Create", mock.Anything, mock.Anything).Return(uint64(0), boom).Once()
	f.sender.On("Send", mock.Anything, "jordan@example.com", mock.Anything, mock.Anything, "Jordan Lee").
		Return(false).Once()
	f.audit.On("Record", mock.Anything, actor.ID, actor.Email, "UPDATE", "Request", "42").
		Return(boom).Once()

	got, err := f.mgr.SetStatus(context.Background(), actor, 42, model.RequestFulfilled, &donorID)

	// Every cascading failure is logged and swallowed; the committed
	// status change is still reported.
	require.NoError(t, err)
	assert.Equal(t, model.RequestFulfilled, got.Status)
	f.assertAll(t)
}

func TestNoNotificationWhenStatusUnchanged(t *testing.T) {
	f := newFixture(t)
	prior := pendingRequest()

	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(prior, nil).Once()
	f.requests.On("UpdateStatus", mock.Anything, uint64(42), model.RequestPending, (*uint64)(nil)).Return(nil).Once()
	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(prior, nil).Once()

	f.audit.On("Record", mock.Anything, actor.ID, actor.Email, "UPDATE", "Request", "42").
		Return(nil).Once()

	_, err := f.mgr.SetStatus(context.Background(), actor, 42, model.RequestPending, nil)

	require.NoError(t, err)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestFulfilledByIgnoredOutsideFulfilled(t *testing.T) {
	f := newFixture(t)
	donorID := uint64(3)
	prior := pendingRequest()
	updated := prior
	updated.Status = model.RequestCancelled

	// A donor reference on a non-fulfilled transition must not be
	// written through.
	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(prior, nil).Once()
	f.requests.On("UpdateStatus", mock.Anything, uint64(42), model.RequestCancelled, (*uint64)(nil)).Return(nil).Once()
	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(updated, nil).Once()

	f.sender.On("Send", mock.Anything, "jordan@example.com", mock.Anything, mock.Anything, "Jordan Lee").
		Return(true).Once()
	f.audit.On("Record", mock.Anything, actor.ID, actor.Email, "UPDATE", "Request", "42").
		Return(nil).Once()

	_, err := f.mgr.SetStatus(context.Background(), actor, 42, model.RequestCancelled, &donorID)

	require.NoError(t, err)
	f.donors.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestReadBackFailureReconstructsResult(t *testing.T) {
	f := newFixture(t)
	donorID := uint64(3)
	prior := pendingRequest()

	f.requests.On("GetByID", mock.Anything, uint64(42)).Return(prior, nil).Once()
	f.requests.On("UpdateStatus", mock.Anything, uint64(42), model.RequestFulfilled, &donorID).Return(nil).Once()
	f.requests.On("GetByID", mock.Anything, uint64(42)).
		Return(model.Request{}, errors.New("read back failed")).Once()

	f.donors.On("GetByID", mock.Anything, donorID).Return(model.Donor{ID: donorID}, nil).Once()
	f.donors.On("UpdateDonationStats", mock.Anything, donorID, uint32(1), f.now).Return(nil).Once()
	f.appts.On("FindFulfilledForDonorSince", mock.Anything, donorID, mock.Anything).
		Return(model.Appointment{ID: 1}, nil).Once()
	f.sender.On("Send", mock.Anything, "jordan@example.com", mock.Anything, mock.Anything, "Jordan Lee").
		Return(true).Once()
	f.audit.On("Record", mock.Anything, actor.ID, actor.Email, "UPDATE", "Request", "42").
		Return(nil).Once()

	got, err := f.mgr.SetStatus(context.Background(), actor, 42, model.RequestFulfilled, &donorID)

	require.NoError(t, err)
	assert.Equal(t, model.RequestFulfilled, got.Status)
	require.NotNil(t, got.FulfilledBy)
	assert.Equal(t, donorID, *got.FulfilledBy)
	f.assertAll(t)
}
