package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// touchBatchSize bounds the IN list of a single last_seen update.
const touchBatchSize = 500

// mergeColumns are the only asset columns an import may rewrite.
var mergeColumns = []string{
	"ip", "groups", "cloud_account_id", "cloud_instance_id", "ad_domain", "os_version", "updated_at",
}

// Store persists assets and observations. A Store bound to a transaction
// (see WithTx) runs every statement inside it.
type Store struct {
	db *gorm.DB
}

// New creates a store on top of a gorm connection or transaction.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a store that issues statements on tx.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Models lists the tables the store owns, in migration order.
func Models() []any {
	return []any{&Asset{}, &Observation{}}
}

// Migrate creates or updates the asset and observation tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// FindByKey returns the asset with the given identity key, or nil.
func (s *Store) FindByKey(ctx context.Context, key string) (*Asset, error) {
	var a Asset
	err := s.db.WithContext(ctx).Where("name_key = ?", key).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asset %q: %w", key, err)
	}
	return &a, nil
}

// FindByIP returns the oldest asset carrying ip, or nil.
func (s *Store) FindByIP(ctx context.Context, ip string) (*Asset, error) {
	var a Asset
	err := s.db.WithContext(ctx).Where("ip = ?", ip).Order("id").Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asset by ip %q: %w", ip, err)
	}
	return &a, nil
}

// CreateOrFetch inserts a unless an asset with the same NameKey exists, in
// which case the existing row is returned and created is false. A concurrent
// run that wins the insert race is resolved the same way.
func (s *Store) CreateOrFetch(ctx context.Context, a *Asset) (*Asset, bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name_key"}}, DoNothing: true}).
		Create(a)
	if res.Error != nil {
		return nil, false, fmt.Errorf("create asset %q: %w", a.NameKey, res.Error)
	}
	if res.RowsAffected > 0 {
		return a, true, nil
	}

	existing, err := s.FindByKey(ctx, a.NameKey)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("create asset %q: conflict but no existing row", a.NameKey)
	}
	return existing, false, nil
}

// Save writes the mergeable attributes of a. Owner, type, description, name
// and the identity key are never touched.
func (s *Store) Save(ctx context.Context, a *Asset) error {
	if a.ID == 0 {
		return errors.New("save asset: missing id")
	}
	err := s.db.WithContext(ctx).Model(a).Select(mergeColumns).Updates(a).Error
	if err != nil {
		return fmt.Errorf("save asset %d: %w", a.ID, err)
	}
	return nil
}

// AddObservation appends an observation.
func (s *Store) AddObservation(ctx context.Context, o *Observation) error {
	if err := s.db.WithContext(ctx).Omit("Asset").Create(o).Error; err != nil {
		return fmt.Errorf("add observation for asset %d: %w", o.AssetID, err)
	}
	return nil
}

// TouchLastSeen sets last_seen for every id without bumping updated_at.
func (s *Store) TouchLastSeen(ctx context.Context, ids []uint, at time.Time) error {
	for start := 0; start < len(ids); start += touchBatchSize {
		end := min(start+touchBatchSize, len(ids))
		err := s.db.WithContext(ctx).Model(&Asset{}).
			Where("id IN ?", ids[start:end]).
			UpdateColumn("last_seen", at).Error
		if err != nil {
			return fmt.Errorf("touch last_seen: %w", err)
		}
	}
	return nil
}

// GetAsset loads an asset by primary key, or nil.
func (s *Store) GetAsset(ctx context.Context, id uint) (*Asset, error) {
	var a Asset
	err := s.db.WithContext(ctx).Take(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset %d: %w", id, err)
	}
	return &a, nil
}

// ListObservations returns the observations of one asset, oldest first.
func (s *Store) ListObservations(ctx context.Context, assetID uint) ([]Observation, error) {
	var out []Observation
	err := s.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("observed_at, id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list observations for asset %d: %w", assetID, err)
	}
	return out, nil
}

// DeleteAsset removes an asset and all of its observations in one transaction.
// The foreign key cascades as well; deleting explicitly keeps drivers without
// enforced constraints consistent.
func (s *Store) DeleteAsset(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ?", id).Delete(&Observation{}).Error; err != nil {
			return fmt.Errorf("delete observations of asset %d: %w", id, err)
		}
		res := tx.Delete(&Asset{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete asset %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteObservation removes a single observation; the owning asset is untouched.
func (s *Store) DeleteObservation(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&Observation{}, id).Error; err != nil {
		return fmt.Errorf("delete observation %d: %w", id, err)
	}
	return nil
}
