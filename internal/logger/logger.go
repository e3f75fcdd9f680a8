package logger

import "go.uber.org/zap"

// New builds the application logger: human-readable in development,
// JSON-structured everywhere else. The logger is also installed globally so
// packages without an injected instance can reach it via zap.L().
func New(env string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if env == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}
