package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"studynotes/internal/database"
	"studynotes/internal/middleware"
	"studynotes/internal/modules/auth"
	"studynotes/internal/modules/dashboard"
	"studynotes/internal/modules/notes"
	"studynotes/internal/modules/search"
	"studynotes/internal/modules/subjects"
	"studynotes/internal/pkg/blobstore"
	jwtsvc "studynotes/internal/pkg/jwt"
	"studynotes/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}

	blobs, err := blobstore.New(uploadDir)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	subjectsHandler := subjects.NewHandler(subjects.NewService(subjectRepo, unitRepo, blobs))
	notesHandler := notes.NewHandler(notes.NewService(noteRepo, blobs))
	dashboardHandler := dashboard.NewHandler(dashboard.NewService(subjectRepo, unitRepo, noteRepo))
	searchHandler := search.NewHandler(search.NewService(noteRepo, subjectRepo, unitRepo))

	r := gin.Default()
	r.MaxMultipartMemory = notes.MaxUploadSize
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	r.GET("/", rootRedirect(j))

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			dashboardHandler.RegisterRoutes(protected)
			subjectsHandler.RegisterRoutes(protected)
			notesHandler.RegisterRoutes(protected)
			searchHandler.RegisterRoutes(protected)
		}
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

// rootRedirect sends authenticated clients to the dashboard and everyone
// else to login.
func rootRedirect(j *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if token != "" {
			if _, err := j.ValidateToken(token); err == nil {
				c.Redirect(http.StatusTemporaryRedirect, "/api/v1/dashboard")
				return
			}
		}
		c.Redirect(http.StatusTemporaryRedirect, "/api/v1/auth/login")
	}
}
