package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)
	suite.NotNil(logger.Logger)
}

func (suite *LoggerTestSuite) TestLoggerSync() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)

	// Sync should not return an error for a valid logger
	err = logger.Sync()
	// Note: Sync may return an error on some systems (e.g., when syncing stdout)
	// but it should not panic
	_ = err
}

func (suite *LoggerTestSuite) TestLoggerSyncNilLogger() {
	logger := &Logger{Logger: nil}

	// Sync should not panic and should return nil for a nil inner logger
	err := logger.Sync()
	suite.NoError(err)
}

func (suite *LoggerTestSuite) TestLoggerLogging() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)

	// These should not panic
	logger.Info("test info message")
	logger.Debug("test debug message")
	logger.Warn("test warn message")
	logger.Error("test error message")
}

func (suite *LoggerTestSuite) TestLoggerWithFields() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)

	// Should not panic
	logger.With().Info("test message with fields")
}

func (suite *LoggerTestSuite) TestDebugLoggerToFile() {
	path := filepath.Join(suite.T().TempDir(), "tracker.log")

	logger, err := NewLoggerWithConfig(Config{Debug: true, OutputPath: path})
	suite.Require().NoError(err)

	logger.Named("pipeline").With(zap.String("symbol", "AAPL")).Debug("fetching")
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.Contains(string(content), "fetching")
	suite.Contains(string(content), "AAPL")
	suite.Contains(string(content), "pipeline")
}

func (suite *LoggerTestSuite) TestProductionLoggerSkipsDebug() {
	path := filepath.Join(suite.T().TempDir(), "tracker.log")

	logger, err := NewLoggerWithConfig(Config{OutputPath: path})
	suite.Require().NoError(err)

	logger.Debug("hidden")
	logger.Info("visible")
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.NotContains(string(content), "hidden")
	suite.Contains(string(content), `"msg":"visible"`)
}

func (suite *LoggerTestSuite) TestNopLogger() {
	logger := NewNopLogger()
	logger.Info("discarded")
	suite.NoError(logger.Sync())
}
