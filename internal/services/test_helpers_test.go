package services_test

import (
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
)

func init() {
	// Debug logging keeps gateway fallbacks visible in verbose test runs
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}
