package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByDeviceID(ctx context.Context, deviceID string) (*Device, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Device), args.Error(1)
}

func (m *MockRepository) GetActiveByToken(ctx context.Context, token string) (*Device, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Device), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, d *Device) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockRepository) Reactivate(ctx context.Context, deviceID, name, token string, now time.Time) error {
	args := m.Called(ctx, deviceID, name, token, now)
	return args.Error(0)
}

func (m *MockRepository) Deactivate(ctx context.Context, deviceID string, now time.Time) error {
	args := m.Called(ctx, deviceID, now)
	return args.Error(0)
}

func (m *MockRepository) TouchLastSync(ctx context.Context, deviceID string, at time.Time) error {
	args := m.Called(ctx, deviceID, at)
	return args.Error(0)
}

func (m *MockRepository) ListActive(ctx context.Context) ([]Device, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Device), args.Error(1)
}

func TestService_Register_New(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("GetByDeviceID", mock.Anything, "d1").Return(nil, ErrNotFound)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *Device) bool {
		return d.DeviceID == "d1" && d.Name == "Phone" && d.IsActive && d.AuthToken != ""
	})).Return(nil)

	reg, err := service.Register(context.Background(), "d1", "Phone")
	require.NoError(t, err)
	assert.False(t, reg.Existed)
	// 32 bytes in unpadded base64url
	assert.Len(t, reg.Device.AuthToken, 43)

	mockRepo.AssertExpectations(t)
}

func TestService_Register_AlreadyActive(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	existing := &Device{DeviceID: "d1", Name: "Phone", AuthToken: "tok-1", IsActive: true}
	mockRepo.On("GetByDeviceID", mock.Anything, "d1").Return(existing, nil)

	reg, err := service.Register(context.Background(), "d1", "Tablet")
	require.NoError(t, err)
	assert.True(t, reg.Existed)
	assert.Equal(t, "tok-1", reg.Device.AuthToken)
	assert.Equal(t, "Phone", reg.Device.Name)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Reactivate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Register_Reactivates(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	existing := &Device{DeviceID: "d1", Name: "Old", AuthToken: "tok-1", IsActive: false}
	mockRepo.On("GetByDeviceID", mock.Anything, "d1").Return(existing, nil)
	mockRepo.On("Reactivate", mock.Anything, "d1", "New", mock.MatchedBy(func(tok string) bool {
		return tok != "" && tok != "tok-1"
	}), mock.AnythingOfType("time.Time")).Return(nil)

	reg, err := service.Register(context.Background(), "d1", "New")
	require.NoError(t, err)
	assert.False(t, reg.Existed)
	assert.True(t, reg.Device.IsActive)
	assert.Equal(t, "New", reg.Device.Name)
	assert.NotEqual(t, "tok-1", reg.Device.AuthToken)

	mockRepo.AssertExpectations(t)
}

func TestService_Register_Race(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	winner := &Device{DeviceID: "d1", Name: "Phone", AuthToken: "tok-w", IsActive: true}
	mockRepo.On("GetByDeviceID", mock.Anything, "d1").Return(nil, ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(ErrAlreadyExists)
	mockRepo.On("GetByDeviceID", mock.Anything, "d1").Return(winner, nil).Once()

	reg, err := service.Register(context.Background(), "d1", "Phone")
	require.NoError(t, err)
	assert.True(t, reg.Existed)
	assert.Equal(t, "tok-w", reg.Device.AuthToken)
}

func TestService_Register_Invalid(t *testing.T) {
	service := NewService(new(MockRepository), slog.Default())

	_, err := service.Register(context.Background(), " ", "Phone")
	assert.ErrorIs(t, err, ErrInvalidDevice)

	_, err = service.Register(context.Background(), "d1", "")
	assert.ErrorIs(t, err, ErrInvalidDevice)
}

func TestService_Authenticate(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		setup   func(m *MockRepository)
		wantErr error
	}{
		{
			name:  "valid token",
			token: "good",
			setup: func(m *MockRepository) {
				m.On("GetActiveByToken", mock.Anything, "good").Return(&Device{DeviceID: "d1", IsActive: true}, nil)
			},
		},
		{
			name:    "empty token",
			token:   "",
			setup:   func(m *MockRepository) {},
			wantErr: ErrUnauthorized,
		},
		{
			name:  "unknown or inactive",
			token: "bad",
			setup: func(m *MockRepository) {
				m.On("GetActiveByToken", mock.Anything, "bad").Return(nil, ErrNotFound)
			},
			wantErr: ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.setup(mockRepo)
			service := NewService(mockRepo, slog.Default())

			d, err := service.Authenticate(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "d1", d.DeviceID)
		})
	}
}

func TestService_Authenticate_StorageError(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("GetActiveByToken", mock.Anything, "tok").Return(nil, errors.New("database error"))
	service := NewService(mockRepo, slog.Default())

	_, err := service.Authenticate(context.Background(), "tok")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestService_Deactivate(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("Deactivate", mock.Anything, "d1", mock.AnythingOfType("time.Time")).Return(nil)
	mockRepo.On("Deactivate", mock.Anything, "nope", mock.AnythingOfType("time.Time")).Return(ErrNotFound)
	service := NewService(mockRepo, slog.Default())

	assert.NoError(t, service.Deactivate(context.Background(), "d1"))
	assert.ErrorIs(t, service.Deactivate(context.Background(), "nope"), ErrNotFound)
}

func TestService_TouchLastSync(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("TouchLastSync", mock.Anything, "d1", mock.AnythingOfType("time.Time")).Return(nil)
	service := NewService(mockRepo, slog.Default())

	d := &Device{DeviceID: "d1"}
	require.NoError(t, service.TouchLastSync(context.Background(), d))
	require.NotNil(t, d.LastSync)
	assert.WithinDuration(t, time.Now(), *d.LastSync, time.Minute)
}
