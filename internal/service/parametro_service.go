package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cajacontrol/internal/config"
	"cajacontrol/internal/model"
	"cajacontrol/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ParametroService hands out immutable threshold snapshots. The DB-backed
// parameter table overrides the compiled defaults; reads go through a short
// TTL cache with explicit invalidation on update, so callers tolerate a brief
// staleness window instead of hitting the table on every operation.
type ParametroService interface {
	Umbrales(ctx context.Context) config.Umbrales
	Actualizar(ctx context.Context, clave, valor string) error
	Invalidate()
}

type parametroService struct {
	repo repository.ParametroRepository
	ttl  time.Duration

	mu       sync.Mutex
	snapshot config.Umbrales
	loadedAt time.Time
}

func NewParametroService(repo repository.ParametroRepository, ttl time.Duration) ParametroService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &parametroService{
		repo:     repo,
		ttl:      ttl,
		snapshot: config.UmbralesPorDefecto(),
	}
}

func (s *parametroService) Umbrales(ctx context.Context) config.Umbrales {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loadedAt.IsZero() && time.Since(s.loadedAt) < s.ttl {
		return s.snapshot
	}

	snapshot := config.UmbralesPorDefecto()
	params, err := s.repo.FindAll(ctx)
	if err != nil {
		// Serve the previous snapshot rather than fail the operation; the
		// thresholds are tunables, not correctness-critical reads.
		log.Warn().Err(err).Msg("parametros: fallo al refrescar, sirviendo snapshot anterior")
		return s.snapshot
	}
	for _, p := range params {
		valor, err := decimal.NewFromString(p.Valor)
		if err != nil {
			log.Warn().Str("clave", p.Clave).Str("valor", p.Valor).Msg("parametros: valor no numérico ignorado")
			continue
		}
		switch p.Clave {
		case model.ParamUmbralAutorizacion:
			snapshot.UmbralAutorizacionMovimiento = valor
		case model.ParamToleranciaArqueo:
			snapshot.ToleranciaArqueo = valor
		}
	}
	s.snapshot = snapshot
	s.loadedAt = time.Now()
	return s.snapshot
}

func (s *parametroService) Actualizar(ctx context.Context, clave, valor string) error {
	switch clave {
	case model.ParamUmbralAutorizacion, model.ParamToleranciaArqueo:
	default:
		return fmt.Errorf("parámetro desconocido: %q", clave)
	}
	monto, err := decimal.NewFromString(valor)
	if err != nil || monto.IsNegative() {
		return fmt.Errorf("valor inválido para %s: %q", clave, valor)
	}
	if err := s.repo.Upsert(ctx, &model.Parametro{Clave: clave, Valor: valor}); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

func (s *parametroService) Invalidate() {
	s.mu.Lock()
	s.loadedAt = time.Time{}
	s.mu.Unlock()
}
