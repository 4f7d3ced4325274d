package repository

import (
	"context"
	"errors"

	"cajacontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Columnas del proyector de totales de sesión. Whitelisted so the atomic
// increment can never interpolate an arbitrary identifier.
const (
	ColVentasEfectivo      = "total_ventas_efectivo"
	ColVentasTarjeta       = "total_ventas_tarjeta"
	ColVentasTransferencia = "total_ventas_transferencia"
	ColVentasBilletera     = "total_ventas_billetera"
	ColIngresosEfectivo    = "total_ingresos_efectivo"
	ColEgresosEfectivo     = "total_egresos_efectivo"
	ColRetiros             = "total_retiros"
	ColGastos              = "total_gastos"
)

var columnasTotales = map[string]bool{
	ColVentasEfectivo:      true,
	ColVentasTarjeta:       true,
	ColVentasTransferencia: true,
	ColVentasBilletera:     true,
	ColIngresosEfectivo:    true,
	ColEgresosEfectivo:     true,
	ColRetiros:             true,
	ColGastos:              true,
}

// ColumnaVentas maps a payment method to its session counter column.
func ColumnaVentas(metodo string) (string, error) {
	switch metodo {
	case model.MetodoEfectivo:
		return ColVentasEfectivo, nil
	case model.MetodoTarjeta:
		return ColVentasTarjeta, nil
	case model.MetodoTransferencia:
		return ColVentasTransferencia, nil
	case model.MetodoBilletera:
		return ColVentasBilletera, nil
	}
	return "", errors.New("método de pago sin columna de totales")
}

type CajaRepository interface {
	DB() *gorm.DB

	CreateCaja(ctx context.Context, c *model.Caja) error
	FindCajaByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	ListCajas(ctx context.Context) ([]model.Caja, error)
	UpdateCaja(ctx context.Context, c *model.Caja) error

	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	// FindSesionAbiertaPorCaja returns nil, nil when the register has no open session.
	FindSesionAbiertaPorCaja(ctx context.Context, cajaID uuid.UUID) (*model.SesionCaja, error)
	// LockSesionTx reads the session row FOR UPDATE inside tx so that
	// check-and-create flows (shift open, arqueo) are serialized per session.
	LockSesionTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error)
	UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	// IncrementarTotalTx adds monto to one projected counter as a single SQL
	// increment, never a read-modify-write at the application layer.
	IncrementarTotalTx(tx *gorm.DB, sesionID uuid.UUID, columna string, monto decimal.Decimal) error
	ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *cajaRepo) CreateCaja(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) FindCajaByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *cajaRepo) ListCajas(ctx context.Context) ([]model.Caja, error) {
	var cajas []model.Caja
	err := r.db.WithContext(ctx).Where("activa = true").Order("nombre ASC").Find(&cajas).Error
	return cajas, err
}

func (r *cajaRepo) UpdateCaja(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbiertaPorCaja(ctx context.Context, cajaID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("caja_id = ? AND estado = ?", cajaID, model.SesionAbierta).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) LockSesionTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.tx(tx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return r.tx(tx).Save(s).Error
}

func (r *cajaRepo) IncrementarTotalTx(tx *gorm.DB, sesionID uuid.UUID, columna string, monto decimal.Decimal) error {
	if !columnasTotales[columna] {
		return errors.New("columna de totales no permitida: " + columna)
	}
	return r.tx(tx).Model(&model.SesionCaja{}).
		Where("id = ?", sesionID).
		UpdateColumn(columna, gorm.Expr(columna+" + ?", monto)).Error
}

func (r *cajaRepo) ListSesiones(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.SesionCaja{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("opened_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sesiones).Error
	return sesiones, total, err
}
