package infra

import (
	"errors"
	"sync"
	"time"
)

// CBState is the breaker position. The breaker sits between the notification
// workers and the SMTP relay so a dead mail server fast-fails instead of
// stalling every worker on connect timeouts.
type CBState int

const (
	CBClosed   CBState = iota // tráfico normal
	CBOpen                    // fast-fail
	CBHalfOpen                // sondas de recuperación
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned by Execute while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	FailureThreshold int           // fallos consecutivos que abren el circuito
	SuccessThreshold int           // sondas exitosas que lo cierran
	OpenTimeout      time.Duration // espera antes de pasar a half-open
}

// DefaultCBConfig returns the thresholds used for the SMTP breaker.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{FailureThreshold: 5, SuccessThreshold: 2, OpenTimeout: time.Minute}
}

// CircuitBreaker tracks one streak counter: negative values are consecutive
// failures, positive values consecutive half-open successes.
type CircuitBreaker struct {
	mu           sync.Mutex
	cfg          CircuitBreakerConfig
	estado       CBState
	racha        int
	abiertoDesde time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	return &CircuitBreaker{cfg: cfg}
}

// State reports the current position, moving Open to HalfOpen once the
// timeout elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.estadoActual()
}

func (cb *CircuitBreaker) estadoActual() CBState {
	if cb.estado == CBOpen && time.Since(cb.abiertoDesde) >= cb.cfg.OpenTimeout {
		cb.estado = CBHalfOpen
		cb.racha = 0
	}
	return cb.estado
}

// Execute runs fn unless the breaker is open, and feeds the outcome back into
// the streak counter.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.estadoActual() == CBOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.registrar(err == nil)
	return err
}

func (cb *CircuitBreaker) registrar(exito bool) {
	switch cb.estado {
	case CBClosed:
		if exito {
			cb.racha = 0
			return
		}
		cb.racha--
		if -cb.racha >= cb.cfg.FailureThreshold {
			cb.abrir()
		}
	case CBHalfOpen:
		if !exito {
			cb.abrir()
			return
		}
		cb.racha++
		if cb.racha >= cb.cfg.SuccessThreshold {
			cb.estado = CBClosed
			cb.racha = 0
		}
	}
}

func (cb *CircuitBreaker) abrir() {
	cb.estado = CBOpen
	cb.racha = 0
	cb.abiertoDesde = time.Now()
}
