package commands

import (
	"context"
	"errors"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "library-backend/docs"
	"library-backend/internal/library/accounts"
	"library-backend/internal/library/books"
	"library-backend/internal/library/dashboard"
	"library-backend/internal/library/loans"
	"library-backend/internal/library/students"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/config"
	"library-backend/internal/platform/docstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	// 設定読み込み
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log.Printf("[INFO] mode:%s store:%s", cfg.Mode, cfg.Store.Driver)

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			log.Printf("[WARN] close store: %v", err)
		}
	}()

	if err := backend.EnsureSchema(ctx, schemas...); err != nil {
		return err
	}

	r, err := newRouter(ctx, cfg, backend)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.TLSEnabled() {
			certFile, keyFile := cfg.CertPaths()
			log.Printf("[INFO] listening on https://%s", cfg.Server.Addr)
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Printf("[WARN] certificate not configured, listening on http://%s", cfg.Server.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-quit:
	}

	log.Println("[INFO] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter wires stores, services and routes over an opened backend.
func newRouter(ctx context.Context, cfg *config.Config, backend docstore.Backend) (*gin.Engine, error) {
	users := cfg.Auth.Users
	if len(users) == 0 {
		if cfg.Mode == config.ModeRelease {
			return nil, errors.New("auth.users is required in release mode")
		}
		demo, err := auth.DefaultUsers()
		if err != nil {
			return nil, err
		}
		users = demo
	}
	userStore, err := auth.NewStore(users)
	if err != nil {
		return nil, err
	}
	authSvc := auth.NewService(cfg.Auth, userStore)

	accountStore, err := accounts.NewSeededStore(ctx)
	if err != nil {
		return nil, err
	}

	bookStore := books.NewStore(backend)
	loanStore := loans.NewStore(backend)
	studentStore := students.NewStore(backend)

	if cfg.Mode == config.ModeRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == config.ModeDev {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Location"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")
	auth.RegisterRoutes(api, authSvc)

	// 本の参照は公開、更新系は Admin のみ
	books.RegisterRoutes(api, books.NewService(backend, bookStore, loanStore),
		auth.RequireAuthRole(authSvc, auth.RoleAdmin))

	authed := api.Group("", auth.RequireAuth(authSvc))
	admin := auth.RequireRole(auth.RoleAdmin)
	loans.RegisterRoutes(authed, loans.NewService(backend, loanStore, bookStore), admin)
	students.RegisterRoutes(authed, students.NewService(backend, studentStore, loanStore), admin)
	dashboard.RegisterRoutes(authed, dashboard.NewService(loanStore, bookStore))
	accounts.RegisterRoutes(authed, accounts.NewService(accountStore))

	r.NoRoute(spaHandler(cfg.Server.StaticDir))
	return r, nil
}

// spaHandler serves the frontend build and falls back to index.html.
func spaHandler(dir string) gin.HandlerFunc {
	var fileFS http.FileSystem
	if dir != "" {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			fileFS = http.FS(os.DirFS(dir))
		} else {
			log.Printf("[WARN] server.static_dir %q not found, frontend disabled", dir)
		}
	}

	return func(c *gin.Context) {
		// API は対象外
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || fileFS == nil {
			c.JSON(http.StatusNotFound, apierr.Body(apierr.CodeNotFound, "route not found"))
			return
		}

		reqPath := strings.TrimPrefix(path.Clean(c.Request.URL.Path), "/")
		if reqPath == "" {
			reqPath = "index.html"
		}

		// 実ファイルがあるならそれを返す（Content-Type を推測、キャッシュ付与）
		if serveFile(c, fileFS, reqPath) {
			return
		}
		// なければ index.html にフォールバック
		if serveFile(c, fileFS, "index.html") {
			return
		}
		c.Status(http.StatusNotFound)
	}
}

func serveFile(c *gin.Context, fileFS http.FileSystem, name string) bool {
	f, err := fileFS.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return true
	}
	if info.IsDir() {
		return false
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		c.Header("Content-Type", ct)
	}
	// index.html 以外はキャッシュ（SPAの基本運用）
	if name != "index.html" {
		c.Header("Cache-Control", "public, max-age=86400, immutable")
	}
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
	return true
}
