package basket

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/basket-engine/pkg/db"
	"github.com/angelmondragon/basket-engine/pkg/db/models"
)

// SQLRepository keeps the basket slot in the basket_records table.
type SQLRepository struct {
	client    *db.Client
	sessionID string
}

// NewSQLRepository binds the row for sessionID.
func NewSQLRepository(client *db.Client, sessionID string) *SQLRepository {
	return &SQLRepository{client: client, sessionID: sessionID}
}

// SQLFactory returns a RepositoryFactory backed by client.
func SQLFactory(client *db.Client) RepositoryFactory {
	return func(sessionID string) Repository {
		return NewSQLRepository(client, sessionID)
	}
}

func (r *SQLRepository) Load(ctx context.Context) ([]LineItem, error) {
	var record models.BasketRecord
	err := r.client.DB().WithContext(ctx).
		Where("session_id = ?", r.sessionID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []LineItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeItems([]byte(record.Payload))
}

func (r *SQLRepository) Save(ctx context.Context, items []LineItem) error {
	return r.upsert(r.client.DB().WithContext(ctx), items)
}

// Update locks the session row for the duration of the transaction. The row
// is created first so two first adds cannot both miss the lock.
func (r *SQLRepository) Update(ctx context.Context, fn UpdateFunc) ([]LineItem, error) {
	var next []LineItem
	err := r.client.WithTx(ctx, func(tx *gorm.DB) error {
		seed := models.BasketRecord{SessionID: r.sessionID, Payload: "[]"}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		query := tx.Where("session_id = ?", r.sessionID)
		// sqlite has no row locks; its write lock is already held by the insert above.
		if tx.Dialector.Name() != "sqlite" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var record models.BasketRecord
		if err := query.First(&record).Error; err != nil {
			return err
		}

		current, err := decodeItems([]byte(record.Payload))
		if err != nil {
			return err
		}
		items, err := fn(current)
		if err != nil {
			return err
		}
		if err := r.upsert(tx, items); err != nil {
			return err
		}
		next = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (r *SQLRepository) upsert(conn *gorm.DB, items []LineItem) error {
	payload, err := encodeItems(items)
	if err != nil {
		return err
	}
	record := models.BasketRecord{
		SessionID: r.sessionID,
		Payload:   string(payload),
	}
	return conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&record).Error
}
