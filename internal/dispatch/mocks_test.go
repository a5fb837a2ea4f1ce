package dispatch

import (
	"context"

	"sigcast/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetChannel(ctx context.Context, phoneNumber string) (*models.Channel, error) {
	args := m.Called(ctx, phoneNumber)
	if ch := args.Get(0); ch != nil {
		return ch.(*models.Channel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) IsAdmin(ctx context.Context, channel, number string) (bool, error) {
	args := m.Called(ctx, channel, number)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) IsPublisher(ctx context.Context, channel, number string) (bool, error) {
	args := m.Called(ctx, channel, number)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) IsSubscriber(ctx context.Context, channel, number string) (bool, error) {
	args := m.Called(ctx, channel, number)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) AddSubscriber(ctx context.Context, channel, number string) error {
	args := m.Called(ctx, channel, number)
	return args.Error(0)
}

func (m *mockStore) RemoveSubscriber(ctx context.Context, channel, number string) (int64, error) {
	args := m.Called(ctx, channel, number)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) AddAdmin(ctx context.Context, channel, number string) error {
	args := m.Called(ctx, channel, number)
	return args.Error(0)
}

func (m *mockStore) RemoveAdmin(ctx context.Context, channel, number string) (int64, error) {
	args := m.Called(ctx, channel, number)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) ListAdmins(ctx context.Context, channel string) ([]string, error) {
	args := m.Called(ctx, channel)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListSubscribers(ctx context.Context, channel string) ([]string, error) {
	args := m.Called(ctx, channel)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) CountAdmins(ctx context.Context, channel string) (int, error) {
	args := m.Called(ctx, channel)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) CountSubscribers(ctx context.Context, channel string) (int, error) {
	args := m.Called(ctx, channel)
	return args.Int(0), args.Error(1)
}

// expectRole wires the three membership lookups so Resolve returns the
// given role for sender on channel.
func (m *mockStore) expectRole(channel, sender string, role models.Role) {
	m.On("IsAdmin", mock.Anything, channel, sender).Return(role == models.RoleAdmin, nil)
	m.On("IsPublisher", mock.Anything, channel, sender).Return(role == models.RolePublisher, nil)
	m.On("IsSubscriber", mock.Anything, channel, sender).Return(role == models.RoleSubscriber, nil)
}

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Send(ctx context.Context, msg *models.SdMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Enqueue(msg *models.SdMessage) {
	m.Called(msg)
}
