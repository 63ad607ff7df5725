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

// UserRepository is the document adapter for users and the read-of-record for
// all application reads. Elasticsearch has no unique constraint, so email
// uniqueness is enforced here with a term-query check that maps to the same
// Conflict signal the relational adapter emits.
type UserRepository struct {
	es    *elasticsearch.Client
	index string
}

func NewUserRepository(es *elasticsearch.Client, index string) *UserRepository {
	return &UserRepository{es: es, index: index}
}

type userDocument struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Age       *int   `json:"age"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	taken, err := r.emailTakenByOther(ctx, u.Email(), u.ID())
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("EMAIL_TAKEN", "User with this email already exists")
	}
	if err := indexDocument(ctx, r.es, r.index, u.ID().String(), userToDocument(u), true); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return apperr.Conflict("EMAIL_TAKEN", "User with this email already exists")
		}
		return err
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
	var doc userDocument
	if err := getDocument(ctx, r.es, r.index, id.String(), &doc); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	return documentToUser(doc)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email valueobject.Email) (*entity.User, error) {
	hits, err := runSearch(ctx, r.es, r.index, termQuery("email", email.String()), 1, "")
	if err != nil {
		return nil, err
	}
	if len(hits.Hits.Hits) == 0 {
		return nil, apperr.NotFound("USER_NOT_FOUND", "User not found")
	}
	var doc userDocument
	if err := json.Unmarshal(hits.Hits.Hits[0].Source, &doc); err != nil {
		return nil, apperr.Database("failed to decode user document", err)
	}
	return documentToUser(doc)
}

// maxListSize caps FindAll at the index's default max_result_window. Listings
// past that are truncated; a catalog that large needs search_after paging at
// the API surface, which this service does not expose.
const maxListSize = 10000

func (r *UserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	query := map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
	}
	hits, err := runSearch(ctx, r.es, r.index, query, maxListSize, "created_at:desc")
	if err != nil {
		return nil, err
	}
	users := make([]*entity.User, 0, len(hits.Hits.Hits))
	for _, h := range hits.Hits.Hits {
		var doc userDocument
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			return nil, apperr.Database("failed to decode user document", err)
		}
		u, err := documentToUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	exists, err := existsDocument(ctx, r.es, r.index, u.ID().String())
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("USER_NOT_FOUND", "User not found")
	}
	taken, err := r.emailTakenByOther(ctx, u.Email(), u.ID())
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("EMAIL_TAKEN", "User with this email already exists")
	}
	return indexDocument(ctx, r.es, r.index, u.ID().String(), userToDocument(u), false)
}

func (r *UserRepository) Delete(ctx context.Context, id valueobject.UserID) error {
	if err := deleteDocument(ctx, r.es, r.index, id.String()); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.NotFound("USER_NOT_FOUND", "User not found")
		}
		return err
	}
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email valueobject.Email) (bool, error) {
	hits, err := runSearch(ctx, r.es, r.index, termQuery("email", email.String()), 0, "")
	if err != nil {
		return false, err
	}
	return hits.Hits.Total.Value > 0, nil
}

// emailTakenByOther reports whether a different document already holds the
// address.
func (r *UserRepository) emailTakenByOther(ctx context.Context, email valueobject.Email, selfID valueobject.UserID) (bool, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{"term": map[string]any{"email": email.String()}},
				},
				"must_not": []any{
					map[string]any{"term": map[string]any{"id": selfID.String()}},
				},
			},
		},
	}
	hits, err := runSearch(ctx, r.es, r.index, query, 0, "")
	if err != nil {
		return false, err
	}
	return hits.Hits.Total.Value > 0, nil
}

func userToDocument(u *entity.User) userDocument {
	return userDocument{
		ID:        u.ID().String(),
		Name:      u.Name(),
		Email:     u.Email().String(),
		Password:  u.Password().Hash(),
		Role:      u.Role().String(),
		Age:       u.Age(),
		CreatedAt: u.CreatedAt().UTC().Format(time.RFC3339Nano),
		UpdatedAt: u.UpdatedAt().UTC().Format(time.RFC3339Nano),
	}
}

func documentToUser(doc userDocument) (*entity.User, error) {
	id, err := valueobject.UserIDFromString(doc.ID)
	if err != nil {
		return nil, err
	}
	email, err := valueobject.NewEmail(doc.Email)
	if err != nil {
		return nil, err
	}
	password, err := valueobject.PasswordFromHash(doc.Password)
	if err != nil {
		return nil, err
	}
	role, err := valueobject.NewRole(doc.Role)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseDocTime(doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseDocTime(doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entity.ReconstructUser(id, doc.Name, email, password, role, doc.Age, createdAt, updatedAt), nil
}

func parseDocTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, apperr.Database("failed to parse document timestamp", err)
	}
	return t.UTC(), nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
