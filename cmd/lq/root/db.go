package root

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"lifequest/internal/auth"
	"lifequest/internal/storage"
)

func openDB(ctx context.Context) (*sql.DB, func(), error) {
	db, err := storage.Open(ctx, cfg.Auth.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func openAuth(ctx context.Context, log *zap.Logger) (*auth.Service, func(), error) {
	db, cleanup, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewService(db, cfg.Auth, log.Named("auth")), cleanup, nil
}
