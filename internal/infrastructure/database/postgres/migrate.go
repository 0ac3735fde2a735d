package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"logipro/internal/domain/job"
	"logipro/internal/infrastructure/database/postgres/models"
	"logipro/internal/logger"
)

// Migrate creates the schema, the job number sequence and the indexes that
// back invariants GORM tags cannot express.
func (d *DB) Migrate(ctx context.Context) error {
	db := d.conn(ctx)

	if err := db.AutoMigrate(
		&models.UserModel{},
		&models.RefreshTokenModel{},
		&models.DriverModel{},
		&models.VehicleModel{},
		&models.JobModel{},
		&models.JobTimelineModel{},
		&models.ShipmentModel{},
		&models.TaxRuleModel{},
		&models.InvoiceModel{},
		&models.CustomerAddressModel{},
		&models.QuoteRequestModel{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	statements := []string{
		fmt.Sprintf(`CREATE SEQUENCE IF NOT EXISTS job_number_seq START WITH %d INCREMENT BY 1`, job.FirstJobNumber),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_job_timelines_single_current ON job_timelines (job_id) WHERE is_current`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_customer_addresses_single_default ON customer_addresses (customer_id) WHERE is_default`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to apply migration statement: %w", err)
		}
	}

	logger.Info("Database schema migrated", zap.Int("extra_statements", len(statements)))
	return nil
}
