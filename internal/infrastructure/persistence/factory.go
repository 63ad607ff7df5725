package persistence

import (
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/internal/infrastructure/elastic"
	"github.com/oksasatya/user-account-service/internal/infrastructure/postgres"
)

// Factory hands out repository singletons without exposing concrete adapter
// types. Docs variants are the document-store read-of-record; Rows variants
// are the relational write-behind mirror. One adapter per (entity, store) for
// the process lifetime.
type Factory struct {
	pool *pgxpool.Pool
	es   *elasticsearch.Client
	idx  elastic.Indices

	userDocsOnce  sync.Once
	userDocs      repository.UserRepository
	userRowsOnce  sync.Once
	userRows      repository.UserRepository
	rtDocsOnce    sync.Once
	rtDocs        repository.RefreshTokenRepository
	rtRowsOnce    sync.Once
	rtRows        repository.RefreshTokenRepository
	resetDocsOnce sync.Once
	resetDocs     repository.PasswordResetTokenRepository
	resetRowsOnce sync.Once
	resetRows     repository.PasswordResetTokenRepository
}

func NewFactory(pool *pgxpool.Pool, es *elasticsearch.Client, idx elastic.Indices) *Factory {
	return &Factory{pool: pool, es: es, idx: idx}
}

func (f *Factory) UserDocs() repository.UserRepository {
	f.userDocsOnce.Do(func() {
		f.userDocs = elastic.NewUserRepository(f.es, f.idx.Users)
	})
	return f.userDocs
}

func (f *Factory) UserRows() repository.UserRepository {
	f.userRowsOnce.Do(func() {
		f.userRows = postgres.NewUserRepository(f.pool)
	})
	return f.userRows
}

func (f *Factory) RefreshTokenDocs() repository.RefreshTokenRepository {
	f.rtDocsOnce.Do(func() {
		f.rtDocs = elastic.NewRefreshTokenRepository(f.es, f.idx.Refresh)
	})
	return f.rtDocs
}

func (f *Factory) RefreshTokenRows() repository.RefreshTokenRepository {
	f.rtRowsOnce.Do(func() {
		f.rtRows = postgres.NewRefreshTokenRepository(f.pool)
	})
	return f.rtRows
}

func (f *Factory) ResetTokenDocs() repository.PasswordResetTokenRepository {
	f.resetDocsOnce.Do(func() {
		f.resetDocs = elastic.NewPasswordResetTokenRepository(f.es, f.idx.ResetTokens)
	})
	return f.resetDocs
}

func (f *Factory) ResetTokenRows() repository.PasswordResetTokenRepository {
	f.resetRowsOnce.Do(func() {
		f.resetRows = postgres.NewPasswordResetTokenRepository(f.pool)
	})
	return f.resetRows
}
