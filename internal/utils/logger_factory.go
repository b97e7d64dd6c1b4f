package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

// LogFormat enumerates supported logging encodings.
type LogFormat string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level %q"
	unsupportedLogFormatTemplateConstant = "unsupported log format %q"
	consoleTimeLayoutConstant            = "15:04:05"
	timeFieldNameConstant                = "ts"
	levelFieldNameConstant               = "level"
	messageFieldNameConstant             = "msg"
	loggerFieldNameConstant              = "logger"
	callerFieldNameConstant              = "caller"
)

// RotatingFileSettings configures the optional rotating diagnostic log file.
type RotatingFileSettings struct {
	Path           string
	MaxSizeMB      int
	MaxBackups     int
	MaxAgeDays     int
	CompressBackup bool
}

// LoggerOutputs groups the diagnostic and human-facing loggers created for a command run.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory builds zap loggers for the requested level and format.
type LoggerFactory struct {
	output       io.Writer
	rotatingFile *RotatingFileSettings
}

// LoggerFactoryOption customises a LoggerFactory.
type LoggerFactoryOption func(*LoggerFactory)

// WithRotatingFile tees diagnostic output into a size-rotated file.
func WithRotatingFile(settings RotatingFileSettings) LoggerFactoryOption {
	return func(factory *LoggerFactory) {
		if len(strings.TrimSpace(settings.Path)) == 0 {
			return
		}
		copied := settings
		factory.rotatingFile = &copied
	}
}

// WithOutput redirects both loggers away from standard error.
func WithOutput(output io.Writer) LoggerFactoryOption {
	return func(factory *LoggerFactory) {
		if output != nil {
			factory.output = output
		}
	}
}

// NewLoggerFactory constructs a LoggerFactory writing to standard error.
func NewLoggerFactory(options ...LoggerFactoryOption) LoggerFactory {
	factory := LoggerFactory{output: os.Stderr}
	for _, option := range options {
		option(&factory)
	}
	return factory
}

// CreateLoggerOutputs builds loggers writing to the factory output. The console logger only
// emits in console format; structured runs get a no-op console logger.
func (factory LoggerFactory) CreateLoggerOutputs(logLevel LogLevel, logFormat LogFormat) (LoggerOutputs, error) {
	zapLevel, levelError := parseLogLevel(logLevel)
	if levelError != nil {
		return LoggerOutputs{}, levelError
	}

	output := factory.output
	if output == nil {
		output = os.Stderr
	}
	logSink := zapcore.Lock(zapcore.AddSync(output))

	var diagnosticEncoder zapcore.Encoder
	switch normalizeLogFormat(logFormat) {
	case LogFormatStructured:
		diagnosticEncoder = zapcore.NewJSONEncoder(structuredEncoderConfiguration())
	case LogFormatConsole:
		diagnosticEncoder = zapcore.NewConsoleEncoder(consoleEncoderConfiguration())
	default:
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatTemplateConstant, logFormat)
	}

	diagnosticCore := zapcore.NewCore(diagnosticEncoder, logSink, zapLevel)
	if factory.rotatingFile != nil {
		diagnosticCore = zapcore.NewTee(diagnosticCore, factory.rotatingFileCore(zapLevel))
	}

	consoleLogger := zap.NewNop()
	if normalizeLogFormat(logFormat) == LogFormatConsole {
		consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(messageOnlyEncoderConfiguration()), logSink, zapLevel)
		consoleLogger = zap.New(consoleCore)
	}

	return LoggerOutputs{
		DiagnosticLogger: zap.New(diagnosticCore),
		ConsoleLogger:    consoleLogger,
	}, nil
}

func (factory LoggerFactory) rotatingFileCore(level zapcore.Level) zapcore.Core {
	rotatingWriter := &lumberjack.Logger{
		Filename:   factory.rotatingFile.Path,
		MaxSize:    factory.rotatingFile.MaxSizeMB,
		MaxBackups: factory.rotatingFile.MaxBackups,
		MaxAge:     factory.rotatingFile.MaxAgeDays,
		Compress:   factory.rotatingFile.CompressBackup,
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(structuredEncoderConfiguration()), zapcore.AddSync(rotatingWriter), level)
}

func parseLogLevel(logLevel LogLevel) (zapcore.Level, error) {
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(logLevel)))) {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, logLevel)
	}
}

func normalizeLogFormat(logFormat LogFormat) LogFormat {
	return LogFormat(strings.ToLower(strings.TrimSpace(string(logFormat))))
}

func structuredEncoderConfiguration() zapcore.EncoderConfig {
	configuration := zap.NewProductionEncoderConfig()
	configuration.TimeKey = timeFieldNameConstant
	configuration.LevelKey = levelFieldNameConstant
	configuration.MessageKey = messageFieldNameConstant
	configuration.NameKey = loggerFieldNameConstant
	configuration.CallerKey = callerFieldNameConstant
	configuration.EncodeTime = zapcore.ISO8601TimeEncoder
	return configuration
}

func consoleEncoderConfiguration() zapcore.EncoderConfig {
	configuration := zap.NewDevelopmentEncoderConfig()
	configuration.EncodeTime = zapcore.TimeEncoderOfLayout(consoleTimeLayoutConstant)
	configuration.EncodeLevel = zapcore.CapitalLevelEncoder
	configuration.CallerKey = zapcore.OmitKey
	return configuration
}

func messageOnlyEncoderConfiguration() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     messageFieldNameConstant,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}
