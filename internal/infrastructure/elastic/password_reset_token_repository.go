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

type PasswordResetTokenRepository struct {
	es    *elasticsearch.Client
	index string
}

func NewPasswordResetTokenRepository(es *elasticsearch.Client, index string) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{es: es, index: index}
}

type resetTokenDocument struct {
	ID        string `json:"id"`
	TokenHash string `json:"token_hash"`
	UserID    string `json:"user_id"`
	ExpiresAt string `json:"expires_at"`
	CreatedAt string `json:"created_at"`
}

func (r *PasswordResetTokenRepository) Save(ctx context.Context, t *entity.PasswordResetToken) error {
	doc := resetTokenDocument{
		ID:        t.ID().String(),
		TokenHash: t.TokenHash(),
		UserID:    t.UserID().String(),
		ExpiresAt: t.ExpiresAt().UTC().Format(time.RFC3339Nano),
		CreatedAt: t.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
	if err := indexDocument(ctx, r.es, r.index, doc.ID, doc, true); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return apperr.Conflict("RESET_TOKEN_EXISTS", "Password reset token already exists")
		}
		return err
	}
	return nil
}

func (r *PasswordResetTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error) {
	hits, err := runSearch(ctx, r.es, r.index, termQuery("token_hash", tokenHash), 1, "")
	if err != nil {
		return nil, err
	}
	if len(hits.Hits.Hits) == 0 {
		return nil, apperr.NotFound("RESET_TOKEN_NOT_FOUND", "Password reset token not found")
	}
	var doc resetTokenDocument
	if err := json.Unmarshal(hits.Hits.Hits[0].Source, &doc); err != nil {
		return nil, apperr.Database("failed to decode password reset token document", err)
	}
	return documentToResetToken(doc)
}

func (r *PasswordResetTokenRepository) Delete(ctx context.Context, id valueobject.PasswordResetTokenID) error {
	if err := deleteDocument(ctx, r.es, r.index, id.String()); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.NotFound("RESET_TOKEN_NOT_FOUND", "Password reset token not found")
		}
		return err
	}
	return nil
}

func (r *PasswordResetTokenRepository) DeleteAllForUser(ctx context.Context, userID valueobject.UserID) error {
	_, err := deleteByQuery(ctx, r.es, r.index, termQuery("user_id", userID.String()))
	return err
}

func (r *PasswordResetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return deleteByQuery(ctx, r.es, r.index, expiryRangeQuery(before))
}

func documentToResetToken(doc resetTokenDocument) (*entity.PasswordResetToken, error) {
	id, err := valueobject.PasswordResetTokenIDFromString(doc.ID)
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
	return entity.ReconstructPasswordResetToken(id, doc.TokenHash, userID, expiresAt, createdAt), nil
}

var _ repository.PasswordResetTokenRepository = (*PasswordResetTokenRepository)(nil)
