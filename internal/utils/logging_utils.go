package utils

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func GenerateTraceId() string {
	return uuid.New().String()
}

// ExtractServiceName returns the service identifier attached to every log line.
func ExtractServiceName() string {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "unistay-server"
	}

	return service
}

func LogEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	case "panic":
		entry.Panic(message)
	default:
		entry.Info(message)
	}
}

func LogMessage(level, message string) {
	entry := log.WithFields(log.Fields{
		"service": ExtractServiceName(),
	})

	LogEntry(entry, level, message)
}

func LogMessageWithFields(c *gin.Context, level, message string) {
	entry := log.WithFields(log.Fields{
		"traceId": c.GetString(TraceIdKey.String()),
		"service": ExtractServiceName(),
	})

	LogEntry(entry, level, message)
}

func LogMessageWithFieldsAndError(c *gin.Context, level, message string, err error) {
	entry := log.WithFields(log.Fields{
		"traceId": c.GetString(TraceIdKey.String()),
		"service": ExtractServiceName(),
		"error":   err,
	})

	LogEntry(entry, level, message)
}
