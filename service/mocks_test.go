package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"batterymart/model"
	"batterymart/provider"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) Create(ctx context.Context, store *model.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *MockStoreRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Store), args.Error(1)
}

func (m *MockStoreRepository) ListByStatus(ctx context.Context, status model.StoreStatus) ([]model.Store, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]model.Store), args.Error(1)
}

func (m *MockStoreRepository) Update(ctx context.Context, store *model.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockVerificationRepository struct {
	mock.Mock
}

func (m *MockVerificationRepository) Create(ctx context.Context, rec *model.VerificationRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockVerificationRepository) ListForSubject(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) ([]model.VerificationRecord, error) {
	args := m.Called(ctx, subjectType, subjectID)
	return args.Get(0).([]model.VerificationRecord), args.Error(1)
}

func (m *MockVerificationRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyIdentityNumber(ctx context.Context, idNumber string, applicant provider.ApplicantInfo) (provider.Result, error) {
	args := m.Called(ctx, idNumber, applicant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(provider.Result), args.Error(1)
}

func (m *MockVerifier) VerifyCompanyRegistration(ctx context.Context, registrationNumber, companyName string) (provider.Result, error) {
	args := m.Called(ctx, registrationNumber, companyName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(provider.Result), args.Error(1)
}

type sentMail struct {
	to, subject, body string
}

// fakeMailer records mail and signals each send on the channel.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
	done chan struct{}
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{done: make(chan struct{}, 8)}
}

func (f *fakeMailer) Send(to, subject, htmlBody string) error {
	f.mu.Lock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	f.mu.Unlock()
	f.done <- struct{}{}
	return f.err
}

func (f *fakeMailer) messages() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
