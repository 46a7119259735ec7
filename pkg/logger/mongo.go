package logger

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap"
)

// maxCommandLength caps the size of a logged command document.
const maxCommandLength = 1000

// MongoMonitor logs MongoDB driver commands through zap.
type MongoMonitor struct {
	ZapLogger     *zap.Logger
	SlowThreshold time.Duration
	LogCommands   bool // log every started/succeeded command at debug level
}

// NewMongoMonitor creates a command monitor. Commands slower than
// slowQuerySeconds are logged as warnings; with logLevel "debug" every
// command is logged.
func NewMongoMonitor(zapLogger *zap.Logger, slowQuerySeconds float64, logLevel string) *MongoMonitor {
	return &MongoMonitor{
		ZapLogger:     zapLogger,
		SlowThreshold: time.Duration(slowQuerySeconds * float64(time.Second)),
		LogCommands:   logLevel == "debug",
	}
}

// CommandMonitor returns the driver hook for this monitor.
func (m *MongoMonitor) CommandMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started:   m.started,
		Succeeded: m.succeeded,
		Failed:    m.failed,
	}
}

func (m *MongoMonitor) started(ctx context.Context, e *event.CommandStartedEvent) {
	if !m.LogCommands {
		return
	}

	cmd := e.Command.String()
	truncated := false
	if len(cmd) > maxCommandLength {
		cmd = cmd[:maxCommandLength] + "..."
		truncated = true
	}

	fields := []zap.Field{
		zap.String("command_name", e.CommandName),
		zap.String("database", e.DatabaseName),
		zap.Int64("mongo_request_id", e.RequestID),
		zap.String("command", cmd),
	}
	if truncated {
		fields = append(fields, zap.Bool("command_truncated", true))
	}

	WithContext(ctx, m.ZapLogger).Debug("mongo command started", fields...)
}

func (m *MongoMonitor) succeeded(ctx context.Context, e *event.CommandSucceededEvent) {
	log := WithContext(ctx, m.ZapLogger)
	fields := []zap.Field{
		zap.String("command_name", e.CommandName),
		zap.Int64("mongo_request_id", e.RequestID),
		zap.Duration("elapsed", e.Duration),
		zap.Float64("elapsed_ms", float64(e.Duration.Nanoseconds())/1e6),
	}

	if m.SlowThreshold != 0 && e.Duration > m.SlowThreshold {
		fields = append(fields, zap.Duration("threshold", m.SlowThreshold))
		log.Warn("mongo slow command", fields...)
		return
	}

	if m.LogCommands {
		log.Debug("mongo command succeeded", fields...)
	}
}

func (m *MongoMonitor) failed(ctx context.Context, e *event.CommandFailedEvent) {
	WithContext(ctx, m.ZapLogger).Error("mongo command failed",
		zap.String("command_name", e.CommandName),
		zap.Int64("mongo_request_id", e.RequestID),
		zap.Duration("elapsed", e.Duration),
		zap.String("failure", e.Failure),
	)
}
