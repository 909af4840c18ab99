package bootstrap

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/homefix-app/homefix-backend/internal/identity"
	repairhttp "github.com/homefix-app/homefix-backend/internal/repair/http"
	"github.com/homefix-app/homefix-backend/internal/repair/repository"
	"github.com/homefix-app/homefix-backend/internal/repair/service"
	"github.com/homefix-app/homefix-backend/internal/repair/sync"
	"github.com/homefix-app/homefix-backend/internal/store"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Store       store.Store
	Paths       store.Paths
	Verifier    identity.TokenVerifier
	Bridge      *sync.RedisBridge
	CompanyName string
	SessionRate rate.Limit
}

// BuildRouter wires the full API. gin.Default's recovery middleware is
// the top-level fault boundary: a panicking handler answers 500 and the
// rest of the session stays intact.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": dep.ServiceName,
			"version": dep.Version,
			"status":  "ok",
		})
	})

	requestRepo := repository.NewRequestRepo(dep.Store, dep.Paths)
	profileRepo := repository.NewProfileRepo(dep.Store, dep.Paths)
	companyRepo := repository.NewCompanyRepo(dep.Store, dep.Paths)

	lifecycle := service.NewLifecycleService(requestRepo, profileRepo)
	profiles := service.NewProfileService(profileRepo, companyRepo, dep.CompanyName)
	resolver := identity.NewResolver(dep.Verifier)

	syncDeps := sync.Deps{
		Requests:       requestRepo,
		Profiles:       profileRepo,
		Company:        companyRepo,
		DefaultCompany: dep.CompanyName,
	}

	handler := repairhttp.New(lifecycle, profiles, resolver, syncDeps, dep.Bridge)

	sessionRate := dep.SessionRate
	if sessionRate == 0 {
		sessionRate = rate.Limit(5) // 5 session mints per second, burst 10
	}
	limiter := rate.NewLimiter(sessionRate, 10)

	api := r.Group("/api/v1")
	handler.Register(api, identity.Middleware(resolver), identity.SessionRateLimit(limiter))

	return r
}
