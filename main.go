package main

import (
	"context"
	"crypto/tls"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moyoez/upload-widget-go/api"
	"github.com/moyoez/upload-widget-go/api/controllers"
	"github.com/moyoez/upload-widget-go/api/models"
	"github.com/moyoez/upload-widget-go/metrics"
	"github.com/moyoez/upload-widget-go/session"
	"github.com/moyoez/upload-widget-go/tool"
	"github.com/moyoez/upload-widget-go/transfer"
)

func main() {
	cfg := tool.SetFlags()

	// initialize logger
	tool.InitLogger()
	tool.SetLogMode(cfg.Log)

	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	tool.ApplyFlagOverrides(&appCfg, cfg)
	if err := tool.ValidateConfig(&appCfg); err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	tool.CurrentConfig = appCfg

	maxFileSize, _ := tool.ParseMaxFileSize(appCfg.MaxFileSize)
	sessionTTL, _ := tool.ParseSessionTTL(appCfg.SessionTTL)

	uploadURL, err := tool.BuildUploadURL(appCfg.Endpoint)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	tool.InitHTTPClients(appCfg.InsecureSkipVerify)

	var tlsCert *tls.Certificate
	if appCfg.Https {
		cert, err := tool.GetOrCreateTLSCertFromConfig(&appCfg)
		if err != nil {
			tool.DefaultLogger.Fatalf("failed to get TLS certificate: %v", err)
		}
		tlsCert = &cert
		if appCfg.CertPEM != tool.CurrentConfig.CertPEM {
			if err := tool.SaveConfig(appCfg); err != nil {
				tool.DefaultLogger.Warnf("%v", err)
			}
		}
	}

	spool, err := models.NewSpool(appCfg.SpoolDir)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	store := models.NewSessionStore(sessionTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go store.RunSweeper(ctx, time.Minute)

	apiServer := api.NewServer(api.ServerOptions{
		Port:             appCfg.Port,
		AllowedOrigins:   appCfg.AllowedOrigins,
		UploadRatePerMin: appCfg.UploadRatePerMin,
		WebOutPath:       appCfg.WebOutPath,
		TLSCert:          tlsCert,
		Widget: controllers.WidgetOptions{
			Store:        store,
			Spool:        spool,
			Uploader:     transfer.NewClient(appCfg.Endpoint, tool.GetHttpClient()),
			Filter:       session.NewFilter(session.DefaultAccept, maxFileSize),
			Metrics:      metrics.New(),
			Endpoint:     appCfg.Endpoint,
			ProbeBackend: appCfg.ProbeBackend,
		},
	})
	tool.DefaultLogger.Infof("Uploading to %s (max file size %s, origins %v)", uploadURL, tool.FormatSize(maxFileSize), appCfg.AllowedOrigins)

	go func() {
		if err := apiServer.Start(); err != nil {
			tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
		}
	}()

	<-ctx.Done()
	tool.DefaultLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		tool.DefaultLogger.Errorf("Server shutdown failed: %v", err)
	}
	store.CloseAll()
	if err := spool.Close(); err != nil {
		tool.DefaultLogger.Errorf("Failed to clean spool dir: %v", err)
	}
}
