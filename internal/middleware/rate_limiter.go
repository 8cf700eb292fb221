package middleware

import (
	"net/http"
	"sync"
	"time"

	"fisiogest/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Rate limiting is in-memory and per-process. The whole front desk of a
// clinic usually shares one IP behind NAT, so the general limit stays
// generous; only the login window is tight.

const loginMaxPorMinuto = 10

type ventanaIP struct {
	mu       sync.Mutex
	conteo   int
	expiraEn time.Time
}

// ventanas is a named, self-purging map of per-IP sliding windows.
type ventanas struct {
	mu      sync.Mutex
	nombre  string
	entries map[string]*ventanaIP
}

func newVentanas(nombre string) *ventanas {
	return &ventanas{nombre: nombre, entries: make(map[string]*ventanaIP)}
}

func (v *ventanas) entry(ip string) *ventanaIP {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[ip]
	if !ok {
		e = &ventanaIP{}
		v.entries[ip] = e
	}
	return e
}

// permitir counts one hit for ip and reports whether it is still under limit.
func (v *ventanas) permitir(ip string, limit int, window time.Duration) (bool, time.Time) {
	e := v.entry(ip)
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	if now.After(e.expiraEn) {
		e.conteo = 0
		e.expiraEn = now.Add(window)
	}
	e.conteo++
	return e.conteo <= limit, e.expiraEn
}

func (v *ventanas) purgar(now time.Time) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	purgados := 0
	for ip, e := range v.entries {
		e.mu.Lock()
		if now.After(e.expiraEn) {
			delete(v.entries, ip)
			purgados++
		}
		e.mu.Unlock()
	}
	return purgados
}

var (
	ventanasLogin = newVentanas("login")
	ventanasAPI   = newVentanas("api")
)

// LoginRateLimiter throttles credential attempts per IP. The window is tight
// on purpose: legitimate staff log in a handful of times per day.
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		ok, _ := ventanasLogin.permitir(ip, loginMaxPorMinuto, time.Minute)
		if !ok {
			log.Warn().Str("ip", ip).Msg("login bloqueado por exceso de intentos")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Espere un minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter throttles general API traffic per IP within a sliding window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		ok, expiraEn := ventanasAPI.permitir(ip, limit, window)
		if !ok {
			log.Warn().
				Str("ip", ip).
				Str("path", c.Request.URL.Path).
				Int("limite", limit).
				Msg("solicitud bloqueada por rate limit")
			c.Header("Retry-After", expiraEn.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// Expired windows are dropped periodically so IPs that never return do not
// accumulate.

const purgeInterval = 5 * time.Minute

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		for _, v := range []*ventanas{ventanasLogin, ventanasAPI} {
			if purgados := v.purgar(now); purgados > 0 {
				log.Debug().
					Str("limiter", v.nombre).
					Int("purgados", purgados).
					Msg("ventanas de rate limit purgadas")
			}
		}
	}
}
