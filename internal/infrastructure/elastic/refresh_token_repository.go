package elastic

import (
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	"github.com/oksasatya/user-account-service/pkg/apperr"
)

type RefreshTokenRepository struct {
	es    *elasticsearch.Client
	index string
}

func NewRefreshTokenRepository(es *elasticsearch.Client, index string) *RefreshTokenRepository {
	return &RefreshTokenRepository{es: es, index: index}
}

type refreshTokenDocument struct {
	ID        string `json:"id"`
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresAt string `json:"expires_at"`
	CreatedAt string `json:"created_at"`
}

func (r *RefreshTokenRepository) Save(ctx context.Context, t *entity.RefreshToken) error {
	// Elasticsearch only guarantees doc-id uniqueness, so the token value is
	// checked with a term query before create, the same way the user adapter
	// enforces email uniqueness. Both adapters emit the same Conflict signal.
	hits, err := runSearch(ctx, r.es, r.index, termQuery("token", t.Token()), 0, "")
	if err != nil {
		return err
	}
	if hits.Hits.Total.Value > 0 {
		return apperr.Conflict("REFRESH_TOKEN_EXISTS", "Refresh token already exists")
	}
	doc := refreshTokenDocument{
		ID:        t.ID().String(),
		Token:     t.Token(),
		UserID:    t.UserID().String(),
		ExpiresAt: t.ExpiresAt().UTC().Format(time.RFC3339Nano),
		CreatedAt: t.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
	if err := indexDocument(ctx, r.es, r.index, doc.ID, doc, true); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return apperr.Conflict("REFRESH_TOKEN_EXISTS", "Refresh token already exists")
		}
		return err
	}
	return nil
}

func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	hits, err := runSearch(ctx, r.es, r.index, termQuery("token", token), 1, "")
	if err != nil {
		return nil, err
	}
	if len(hits.Hits.Hits) == 0 {
		return nil, apperr.NotFound("REFRESH_TOKEN_NOT_FOUND", "Refresh token not found")
	}
	var doc refreshTokenDocument
	if err := json.Unmarshal(hits.Hits.Hits[0].Source, &doc); err != nil {
		return nil, apperr.Database("failed to decode refresh token document", err)
	}
	return documentToRefreshToken(doc)
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, id valueobject.RefreshTokenID) error {
	if err := deleteDocument(ctx, r.es, r.index, id.String()); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.NotFound("REFRESH_TOKEN_NOT_FOUND", "Refresh token not found")
		}
		return err
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	deleted, err := deleteByQuery(ctx, r.es, r.index, termQuery("token", token))
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperr.NotFound("REFRESH_TOKEN_NOT_FOUND", "Refresh token not found")
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteAllForUser(ctx context.Context, userID valueobject.UserID) error {
	_, err := deleteByQuery(ctx, r.es, r.index, termQuery("user_id", userID.String()))
	return err
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return deleteByQuery(ctx, r.es, r.index, expiryRangeQuery(before))
}

func documentToRefreshToken(doc refreshTokenDocument) (*entity.RefreshToken, error) {
	id, err := valueobject.RefreshTokenIDFromString(doc.ID)
	if err != nil {
		return nil, err
	}
	userID, err := valueobject.UserIDFromString(doc.UserID)
	if err != nil {
		return nil, err
	}
	expiresAt, err := parseDocTime(doc.ExpiresAt)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseDocTime(doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return entity.ReconstructRefreshToken(id, doc.Token, userID, expiresAt, createdAt), nil
}

var _ repository.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
