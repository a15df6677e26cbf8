package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/pkgdeck/internal/app"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    app.New(app.Deps{Logger: mockLogger}),
			Logger: mockLogger,
		}, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run logs the error and returns 1 when a command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)

	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockCache.EXPECT().Clear().Return(domain.ErrCacheWriteFailed)
	mockLogger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrCacheWriteFailed)
	})

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    app.New(app.Deps{Cache: mockCache, Logger: mockLogger}),
			Logger: mockLogger,
		}, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"cache", "clean"}, stderr, provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_CleanupIsCalled verifies that the provider's cleanup runs after execution.
func TestRun_CleanupIsCalled(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	cleaned := false

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    app.New(app.Deps{Logger: mockLogger}),
			Logger: mockLogger,
		}, func() { cleaned = true }, nil
	}

	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), provider)
	assert.Equal(t, 0, exitCode)
	assert.True(t, cleaned)
}
