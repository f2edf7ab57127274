package bootstrap

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/appforge-io/appforge-backend/internal/api/http"
	"github.com/appforge-io/appforge-backend/internal/projects"
	"github.com/appforge-io/appforge-backend/internal/projects/repository"
)

type RouterDeps struct {
	ServiceName   string
	Version       string
	Pool          *pgxpool.Pool
	SQLDB         *sql.DB
	Publisher     projects.EventPublisher
	Queue         httpapi.QueueInspector
	HistoryWindow int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Pool, dep.Queue)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	projectRepo := repository.NewProjectRepo(dep.Pool)
	messageRepo := repository.NewMessageRepo(dep.SQLDB)

	handler := projects.NewHandler(projectRepo, messageRepo, dep.Publisher, dep.HistoryWindow)
	handler.Register(api)

	return r
}
