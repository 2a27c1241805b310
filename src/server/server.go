package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"galleryserv/src/app"
	"galleryserv/src/auth"
	cfg "galleryserv/src/configuration"
	"galleryserv/src/logger"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the middleware chain and every route of the gallery API.
func NewRouter(config *cfg.Properties, gallery *app.Gallery, verifier auth.Verifier, log *logger.Logger) *gin.Engine {
	if config.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(RequestLogger(log))
	router.Use(gin.CustomRecovery(recovered))
	router.Use(CORS(config.Server.AllowedOrigins))
	router.Use(Preflight())

	health := NewHealthHandler(config.ServiceName)
	router.GET("/health", health.GetHealth)

	handler := NewAppHandler(gallery)
	api := router.Group("/", Authorize(verifier))
	{
		api.GET("/get-folders", handler.GetFolders)
		api.GET("/get-photos", handler.GetPhotos)
		api.POST("/create-folder", handler.CreateFolder)
		api.POST("/generate-upload-url", handler.GenerateUploadURL)
		api.DELETE("/delete-photo", handler.DeletePhoto)
		api.DELETE("/delete-folder", handler.DeleteFolder)
	}

	if config.Server.Pprof {
		pprof.Register(router)
	}

	router.NoRoute(notFound)
	router.NoMethod(methodNotAllowed)
	return router
}

// RunServer serves handler until ctx is cancelled, then drains in-flight
// requests for at most the configured shutdown timeout.
func RunServer(ctx context.Context, config *cfg.Properties, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", config.Server.Port),
		Handler:      handler,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("%s listening on %s", config.ServiceName, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
