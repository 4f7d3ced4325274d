package infra

import (
	"fmt"

	"cajacontrol/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for every entity and then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes, CHECK constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

// RunMigrations creates or updates the schema. Shared with the integration
// tests, which run it against a throwaway container database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Caja{},
		&model.SesionCaja{},
		&model.TurnoCaja{},
		&model.MovimientoCaja{},
		&model.GastoCaja{},
		&model.RetiroCaja{},
		&model.ArqueoCaja{},
		&model.Venta{},
		&model.Notificacion{},
		&model.Parametro{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot emit. Each
// statement is guarded so re-running on an already-patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one open session per register, enforced at the storage layer
		// in addition to the advisory row lock taken by the services.
		{"partial unique idx: one open session per caja", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_sesion_abierta_por_caja') THEN
    CREATE UNIQUE INDEX uq_sesion_abierta_por_caja
        ON sesion_cajas (caja_id)
        WHERE estado = 'abierta';
  END IF;
END $$`},
		// At most one active shift per session.
		{"partial unique idx: one active turno per sesion", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_turno_activo_por_sesion') THEN
    CREATE UNIQUE INDEX uq_turno_activo_por_sesion
        ON turno_cajas (sesion_caja_id)
        WHERE estado = 'activo';
  END IF;
END $$`},
		// At most one pending till count per session.
		{"partial unique idx: one pending arqueo per sesion", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_arqueo_pendiente_por_sesion') THEN
    CREATE UNIQUE INDEX uq_arqueo_pendiente_por_sesion
        ON arqueo_cajas (sesion_caja_id)
        WHERE estado = 'pendiente_aprobacion';
  END IF;
END $$`},
		// Monetary amounts are strictly positive at the storage boundary too.
		{"check: montos positivos", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'ck_movimiento_monto_positivo') THEN
    ALTER TABLE movimiento_cajas ADD CONSTRAINT ck_movimiento_monto_positivo CHECK (monto > 0);
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'ck_retiro_monto_positivo') THEN
    ALTER TABLE retiro_cajas ADD CONSTRAINT ck_retiro_monto_positivo CHECK (monto > 0);
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'ck_gasto_monto_positivo') THEN
    ALTER TABLE gasto_cajas ADD CONSTRAINT ck_gasto_monto_positivo CHECK (monto > 0);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
