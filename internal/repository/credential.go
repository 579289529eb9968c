package repository

import (
	"context"
	"errors"

	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/pkg/api/nadeo"
	"github.com/trackpredict/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// credentialRepository implements nadeo.CredentialStore on top of the
// service_credentials table, replacing the token files the results client
// would otherwise keep on disk.
type credentialRepository struct{}

func NewCredentialRepository() *credentialRepository {
	return &credentialRepository{}
}

func (r *credentialRepository) Get(
	ctx context.Context, audience string,
) (*nadeo.Credential, error) {
	var result entity.ServiceCredential
	if err := xcontext.DB(ctx).Take(&result, "audience=?", audience).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &nadeo.Credential{
		Audience:    result.Audience,
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
	}, nil
}

func (r *credentialRepository) Upsert(
	ctx context.Context, credential *nadeo.Credential,
) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "audience"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"access_token": credential.AccessToken,
				"expires_at":   credential.ExpiresAt,
			}),
		}).Create(&entity.ServiceCredential{
		Audience:    credential.Audience,
		AccessToken: credential.AccessToken,
		ExpiresAt:   credential.ExpiresAt,
	}).Error
}
