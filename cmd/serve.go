package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/acme/autocert"

	"folio/config"
	"folio/handler"
	"folio/web"
)

func newServeCMD() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
				cfg.Addr = listen
			}
			if err := cfg.CheckServe(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(cmd)
			a, err := openApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := newServer(a)
			if err != nil {
				return err
			}
			return run(ctx, e, cfg)
		},
	}
	c.Flags().String("listen", "", "listen address, like `localhost:8080`; empty serves TLS on :443 in pro")
	return c
}

func newServer(a *app) (*echo.Echo, error) {
	renderer, err := web.NewTemplateRegistry()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger = a.logger
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler

	h := &handler.Handler{
		Blog:         a.blog,
		Users:        a.users,
		JWTSecret:    a.cfg.JWTSecret,
		EnableSignup: a.cfg.EnableSignup,
		Environment:  a.cfg.Env,
	}
	h.Register(e)

	e.Static("/static", "assets")
	if !a.cfg.UseS3() && strings.HasPrefix(a.cfg.UploadBaseURL, "/") {
		e.Static(a.cfg.UploadBaseURL, a.cfg.UploadDir)
	}
	return e, nil
}

func run(ctx context.Context, e *echo.Echo, cfg config.Config) error {
	errc := make(chan error, 1)
	go func() {
		if cfg.Addr != "" {
			errc <- e.Start(cfg.Addr)
			return
		}
		// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
		e.AutoTLSManager.Cache = autocert.DirCache(cfg.CertCache)
		if cfg.WhitelistHost != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.WhitelistHost)
		}
		e.Pre(middleware.HTTPSRedirect())
		errc <- e.StartAutoTLS(":443")
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdown)
}
