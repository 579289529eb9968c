package xcontext

import (
	"context"
	"net/http"
	"sync"

	"github.com/trackpredict/backend/config"
	"github.com/trackpredict/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	dbKey         struct{}
	txKey         struct{}
	loggerKey     struct{}
	configsKey    struct{}
	userIDKey     struct{}
	httpClientKey struct{}
)

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current database handle. If the context carries an active
// transaction, the transaction is returned instead.
func DB(ctx context.Context) *gorm.DB {
	if holder, ok := ctx.Value(txKey{}).(*txHolder); ok {
		if tx := holder.get(); tx != nil {
			return tx
		}
	}

	if db, ok := ctx.Value(dbKey{}).(*gorm.DB); ok {
		return db
	}

	return nil
}

type txHolder struct {
	mutex sync.Mutex
	tx    *gorm.DB
	done  bool
}

func (h *txHolder) get() *gorm.DB {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.done {
		return nil
	}
	return h.tx
}

func (h *txHolder) finish() *gorm.DB {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.done {
		return nil
	}
	h.done = true
	return h.tx
}

// WithDBTransaction begins a transaction and makes DB() return it until the
// transaction is committed or rolled back.
func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, &txHolder{tx: DB(ctx).Begin()})
}

// WithCommitDBTransaction commits the transaction carried by the context, if
// any is still active.
func WithCommitDBTransaction(ctx context.Context) {
	if holder, ok := ctx.Value(txKey{}).(*txHolder); ok {
		if tx := holder.finish(); tx != nil {
			tx.Commit()
		}
	}
}

// WithRollbackDBTransaction rollbacks the transaction carried by the context.
// It is a no-op after WithCommitDBTransaction, so it is safe to defer.
func WithRollbackDBTransaction(ctx context.Context) {
	if holder, ok := ctx.Value(txKey{}).(*txHolder); ok {
		if tx := holder.finish(); tx != nil {
			tx.Rollback()
		}
	}
}

func WithLogger(ctx context.Context, logger logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func Logger(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		return l
	}

	return logger.NewLogger(logger.INFO)
}

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	if cfg, ok := ctx.Value(configsKey{}).(config.Configs); ok {
		return cfg
	}

	return config.Configs{}
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}

	return ""
}

func WithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, httpClientKey{}, client)
}

func HTTPClient(ctx context.Context) *http.Client {
	if client, ok := ctx.Value(httpClientKey{}).(*http.Client); ok {
		return client
	}

	return http.DefaultClient
}
