package repository

import (
	"context"
	"fmt"
	"time"

	"cardwise/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OfferRecord is the persisted row shape for an offer. The derived offer id
// is stored alongside the raw fields purely as the upsert conflict target;
// the domain object always recomputes it.
type OfferRecord struct {
	gorm.Model

	OfferID     string `gorm:"type:varchar(1024);uniqueIndex:idx_offer_id"`
	ShopName    string `gorm:"type:varchar(255)"`
	BankName    string `gorm:"type:varchar(100)"`
	OfferType   string `gorm:"type:varchar(50)"`
	Description string `gorm:"type:text"`
	ExpiryDate  *time.Time
}

func (OfferRecord) TableName() string { return "offers" }

// ToDomain reconstructs the domain offer from a stored row.
func (r OfferRecord) ToDomain() models.Offer {
	return models.Offer{
		Shop:        models.Shop{Name: r.ShopName},
		Bank:        models.Bank{Name: r.BankName},
		OfferType:   models.OfferType(r.OfferType),
		Description: r.Description,
		ExpiryDate:  r.ExpiryDate,
	}
}

func recordFromOffer(o models.Offer) OfferRecord {
	return OfferRecord{
		OfferID:     o.ID(),
		ShopName:    o.Shop.Name,
		BankName:    o.Bank.Name,
		OfferType:   string(o.OfferType),
		Description: o.Description,
		ExpiryDate:  o.ExpiryDate,
	}
}

// OfferRepository is the persistence contract for the offer universe.
type OfferRepository interface {
	// Init prepares storage (table migration for the SQL implementation).
	Init(ctx context.Context) error
	// SaveAll upserts offers and reports how many rows were written.
	// Rows already present by offer id are left untouched.
	SaveAll(ctx context.Context, offers []models.Offer) (int, error)
	// GetAll returns every stored offer.
	GetAll(ctx context.Context) ([]models.Offer, error)
	// Count returns the number of stored offers.
	Count(ctx context.Context) (int, error)
	// Refresh clears and reinitializes storage.
	Refresh(ctx context.Context) error
}

// PostgresOfferRepository implements OfferRepository on PostgreSQL via GORM.
type PostgresOfferRepository struct {
	db *gorm.DB
}

func NewPostgresOfferRepository(db *gorm.DB) *PostgresOfferRepository {
	return &PostgresOfferRepository{db: db}
}

// Init handles GORM's automatic table creation/migration.
func (r *PostgresOfferRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&OfferRecord{})
}

// SaveAll performs a batched upsert keyed on the offer id. Conflicting rows
// are skipped, matching the description-sensitive identity model: a reworded
// offer is a new row, an identical one is already there.
func (r *PostgresOfferRepository) SaveAll(ctx context.Context, offers []models.Offer) (int, error) {
	if len(offers) == 0 {
		return 0, nil
	}
	records := make([]OfferRecord, 0, len(offers))
	for _, o := range offers {
		records = append(records, recordFromOffer(o))
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "offer_id"}},
		DoNothing: true,
	}).CreateInBatches(&records, 100)
	if result.Error != nil {
		return 0, fmt.Errorf("gorm bulk upsert failed: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *PostgresOfferRepository) GetAll(ctx context.Context) ([]models.Offer, error) {
	var records []OfferRecord
	result := r.db.WithContext(ctx).Order("offer_id").Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve offers: %w", result.Error)
	}
	offers := make([]models.Offer, 0, len(records))
	for _, rec := range records {
		offers = append(offers, rec.ToDomain())
	}
	return offers, nil
}

func (r *PostgresOfferRepository) Count(ctx context.Context) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&OfferRecord{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("gorm count failed: %w", result.Error)
	}
	return int(count), nil
}

// Refresh drops every stored offer so the next ingest starts clean.
func (r *PostgresOfferRepository) Refresh(ctx context.Context) error {
	result := r.db.WithContext(ctx).Unscoped().Where("1 = 1").Delete(&OfferRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to clear offers: %w", result.Error)
	}
	return r.Init(ctx)
}
