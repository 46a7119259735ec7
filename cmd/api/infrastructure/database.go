package infrastructure

import (
	"user-crud-service/internal/config"
	"user-crud-service/pkg/logger"
	"user-crud-service/pkg/mongodb"

	"go.uber.org/zap"
)

// NewMongo connects to the document store. Failures are logged, never
// returned: a nil client means the URI could not even be parsed, a
// non-nil client with err set means the deployment did not answer the
// first ping and the driver will keep trying per request.
func NewMongo(cfg *config.Config, l *zap.Logger) (client *mongodb.Client, err error) {
	monitor := logger.NewMongoMonitor(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level)

	client, err = mongodb.NewClient(mongodb.Config{
		URI:            cfg.Mongo.URL,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: cfg.Mongo.ConnectTimeout(),
		MaxPoolSize:    cfg.Mongo.MaxPoolSize,
		MinPoolSize:    cfg.Mongo.MinPoolSize,
		Monitor:        monitor.CommandMonitor(),
	}, l)
	if err != nil {
		l.Error("MongoDB connection error",
			zap.String("database", cfg.Mongo.Database),
			zap.Bool("client_created", client != nil),
			zap.Error(err),
		)
	}

	return client, err
}
