package infra

import (
	"fmt"

	"fisiogest/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial indexes).
//
// TranslateError is required: the services distinguish unique-constraint
// violations via gorm.ErrDuplicatedKey to resolve the upsert and order-number
// races.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates or updates the schema. Also used by integration tests
// against a disposable database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Paciente{},
		&model.Sesion{},
		&model.PagoPersonal{},
		&model.Auditoria{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement guards on existence so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index backing the pending-payments report: only unpaid rows.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'sesiones')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_sesiones_pendientes') THEN
		    CREATE INDEX idx_sesiones_pendientes
		        ON sesiones (fecha DESC)
		        WHERE pago_pagado = false;
		  END IF;
		END $$`,
		// Month-sheet query filters by (anio, mes) and sorts by (semana, fecha).
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'pagos_personal')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_pagos_personal_mes') THEN
		    CREATE INDEX idx_pagos_personal_mes
		        ON pagos_personal (anio, mes, semana_del_mes, fecha);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
