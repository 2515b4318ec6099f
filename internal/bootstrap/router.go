package bootstrap

import (
	"time"

	httpapi "github.com/GoSim-25-26J-441/go-traffic-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/repository"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/service"
	traffichttp "github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/http"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Environment string
	Traffic     *service.TrafficService
	Repo        *repository.SnapshotRepository // nil when Redis is disabled
	Limiter     *rate.Limiter                  // nil disables rate limiting
}

func SetGinMode(env string) {
	switch env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	SetGinMode(dep.Environment)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders:   []string{middleware.HeaderRequestID},
		MaxAge:          12 * time.Hour,
	}))

	// keep a nil repository out of the interface
	var pinger httpapi.Pinger
	if dep.Repo != nil {
		pinger = dep.Repo
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, pinger, dep.Traffic)
	healthHandler.RegisterRoutes(r)

	traffic := r.Group("/api/traffic")
	traffichttp.New(dep.Traffic, dep.Limiter).Register(traffic)

	return r
}
