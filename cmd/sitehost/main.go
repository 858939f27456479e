package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	v1 "sitehost/api/v1"
	"sitehost/internal/auth"
	"sitehost/internal/cache"
	"sitehost/internal/config"
	"sitehost/internal/db"
	"sitehost/internal/domain"
	"sitehost/internal/edge/cloudflare"
	"sitehost/internal/session"
	"sitehost/internal/site"
)

func main() {
	// 1. Load configuration
	var cfg *config.Config
	var err error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.LoadFromINI(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("✓ Configuration loaded")

	// 2. Initialize MySQL
	if err := db.InitMySQL(cfg.MySQL.DSN); err != nil {
		log.Fatalf("Failed to initialize MySQL: %v", err)
	}
	defer db.Close()

	if cfg.Migrate {
		if err := db.Migrate(db.DB); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// 3. Initialize Redis
	if err := cache.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer cache.Close()

	// 4. Wire services
	auth.InitJWT(cfg.JWT.Secret)
	sessions := session.NewStore(cache.Client)

	edgeClient := cloudflare.New(cfg.Edge.APIToken, cfg.Edge.ZoneID)
	if cfg.Edge.APIToken == "" || cfg.Edge.ZoneID == "" {
		log.Println("! Edge provider credentials not set; custom domain operations will fail")
	}

	storage, err := site.NewStorage(cfg.Sites.ContentRoot)
	if err != nil {
		log.Fatalf("Failed to initialize content storage: %v", err)
	}

	domainSvc := domain.NewService(db.DB, edgeClient)
	siteSvc := site.NewService(db.DB, storage, cfg.Sites.BaseDomain, domainSvc)

	// 5. Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	v1.SetupRouter(r, db.DB, cfg, sessions, domainSvc, siteSvc)

	log.Printf("✓ Server starting on %s", cfg.HTTPAddr)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
