package logger

import (
	"go.uber.org/zap"
)

// New builds a zap logger appropriate for the environment, named after the
// service. Development gets console output, everything else structured JSON.
func New(env, service string) (*zap.Logger, error) {
	var log *zap.Logger
	var err error
	if env == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.Named(service), nil
}
