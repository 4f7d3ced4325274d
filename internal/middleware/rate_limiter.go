package middleware

import (
	"net/http"
	"sync"
	"time"

	"cajacontrol/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ventanaIP is a fixed-window per-IP counter shared by both limiters.
type ventanaIP struct {
	mu      sync.Mutex
	ventana time.Duration
	conteos map[string]*conteoIP
}

type conteoIP struct {
	n     int
	hasta time.Time
}

func nuevaVentanaIP(ventana time.Duration) *ventanaIP {
	v := &ventanaIP{ventana: ventana, conteos: make(map[string]*conteoIP)}
	go v.depurar()
	return v
}

// permitir counts one request for ip and reports whether it stays under
// limite. Returns the window end so callers can set Retry-After.
func (v *ventanaIP) permitir(ip string, limite int) (bool, time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ahora := time.Now()
	c := v.conteos[ip]
	if c == nil || ahora.After(c.hasta) {
		c = &conteoIP{hasta: ahora.Add(v.ventana)}
		v.conteos[ip] = c
	}
	c.n++
	return c.n <= limite, c.hasta
}

// depurar drops windows that already closed so one-off IPs do not pin memory.
func (v *ventanaIP) depurar() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ahora := time.Now()
		v.mu.Lock()
		eliminados := 0
		for ip, c := range v.conteos {
			if ahora.After(c.hasta) {
				delete(v.conteos, ip)
				eliminados++
			}
		}
		v.mu.Unlock()
		if eliminados > 0 {
			log.Debug().Int("entradas", eliminados).Msg("rate limiter: ventanas expiradas eliminadas")
		}
	}
}

var ventanaLogin = nuevaVentanaIP(time.Minute)

// LoginRateLimiter caps login attempts at 20 per minute per IP, against
// credential stuffing from the store network.
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, _ := ventanaLogin.permitir(c.ClientIP(), 20); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter is the general per-IP limiter applied to the whole API surface.
func RateLimiter(limite int, ventana time.Duration) gin.HandlerFunc {
	v := nuevaVentanaIP(ventana)
	return func(c *gin.Context) {
		ok, hasta := v.permitir(c.ClientIP(), limite)
		if !ok {
			c.Header("Retry-After", hasta.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
