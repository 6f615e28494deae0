package repository

import (
	"testing"

	"github.com/golang/mock/gomock"

	pkgmocks "github.com/ecombi/dashboard/pkg/mocks"
)

func newMockLogger(t *testing.T) *pkgmocks.MockLogger {
	ctrl := gomock.NewController(t)
	mockLogger := pkgmocks.NewMockLogger(ctrl)

	// Configure logger to handle any calls
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().WithFields(gomock.Any()).Return(mockLogger).AnyTimes()
	return mockLogger
}
