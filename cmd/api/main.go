package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jobreport/internal/auth"
	"jobreport/internal/httpserver"
	"jobreport/internal/logger"
	"jobreport/internal/models"
	"jobreport/internal/sweeper"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.Department{}, &models.Service{}, &models.Branch{}, &models.Subdivision{},
		&models.Report{}, &models.Archive{},
		&models.Profile{}, &models.RefreshToken{}, &models.Notice{}, &models.Syslog{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	seedDefaultAdmin(db, lg)

	sw := sweeper.New(db, lg)
	if err := sw.Start(); err != nil {
		lg.Fatalw("sweeper start failed", "error", err)
	}
	defer sw.Stop()

	router := httpserver.NewRouter(db, lg)
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	lg.Infow("listening", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}

func seedDefaultAdmin(db *gorm.DB, lg *zap.SugaredLogger) {
	email := strings.ToLower(os.Getenv("ADMIN_EMAIL"))
	if email == "" {
		email = "admin@jobreport.local"
	}
	var count int64
	db.Model(&models.Profile{}).Where("LOWER(email) = ?", email).Count(&count)
	if count > 0 {
		return
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		lg.Warnw("admin seed skipped", "error", err)
		return
	}
	p := models.Profile{
		Email:       email,
		Password:    hash,
		Fullname:    "Administrator",
		IsActivated: true,
		Role:        models.RoleAdministrator,
	}
	if err := db.Create(&p).Error; err != nil {
		lg.Warnw("admin seed failed", "error", err)
		return
	}
	lg.Infow("seeded default administrator", "email", email)
}
