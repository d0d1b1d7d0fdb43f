// Package logging builds the backend's zap logger.
//
// Production mode writes JSON records carrying a service field; development
// mode writes colored console output. LOG_LEVEL and LOG_DEV select between
// them at startup.
//
//	logger := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	blobs := blob.NewProvider(db, blobCfg, logger.Component("blob").Logger)
package logging
