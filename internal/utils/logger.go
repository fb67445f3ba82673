package utils

import "go.uber.org/zap"

// NewLogger returns a production logger for release environments and a
// development logger otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "release" || env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
