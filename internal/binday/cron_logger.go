package binday

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ibs-source/bindicator/internal/log"
)

// cronLogger routes the scheduler's own messages into the service logger.
// Cron's info chatter (wake-ups, skips) goes to debug.
type cronLogger struct {
	log *log.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.DebugWithFields(pairs(keysAndValues), "cron: %s", msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.ErrorWithFields(pairs(keysAndValues), "cron: %s: %v", msg, err)
}

func pairs(keysAndValues []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
