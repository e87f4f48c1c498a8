package main

import (
	"context"
	"errors"
	"io"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/roamnest/roamnest-core/internal/backend"
	"github.com/roamnest/roamnest-core/internal/config"
	"github.com/roamnest/roamnest-core/internal/logging"
	"github.com/roamnest/roamnest-core/internal/media"
	miniorepo "github.com/roamnest/roamnest-core/internal/repository/minio"
	"github.com/roamnest/roamnest-core/internal/repository/ports"
	"github.com/roamnest/roamnest-core/internal/repository/postgres"
	"github.com/roamnest/roamnest-core/internal/repository/sqlite"
	"github.com/roamnest/roamnest-core/internal/secrets"
	"github.com/roamnest/roamnest-core/internal/service"
	"github.com/roamnest/roamnest-core/internal/transport/http"
	"github.com/roamnest/roamnest-core/internal/transport/notify"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash mirror disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, writer))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := openSettings(ctx, cfg)
	defer settings.Close()

	client, err := backend.NewClient(cfg.BackendBaseURL, accessKey(cfg))
	if err != nil {
		log.Fatalf("backend client: %v", err)
	}

	prefs := service.NewPreferenceService(settings)

	gateway := notify.NewLocalGateway()
	defer gateway.Close()
	notifications := service.NewNotificationService(gateway)
	defer notifications.Close()
	notifications.CheckAuthorizationStatus(ctx)

	go func() {
		for delivered := range gateway.Deliveries() {
			log.Printf("notification delivered: %s %q", delivered.ID, delivered.Title)
		}
	}()

	var noteMedia *service.NoteMediaService
	if cfg.MediaEndpoint != "" {
		mc, err := miniorepo.NewClient(cfg.MediaEndpoint, cfg.MediaAccessKey, cfg.MediaSecretKey, cfg.MediaUseSSL)
		if err != nil {
			log.Fatalf("media client: %v", err)
		}
		noteMedia = service.NewNoteMediaService(
			prefs,
			miniorepo.NewMediaStorage(mc, cfg.MediaPublicURL),
			media.NewResizer(cfg.ImageMaxDimension),
			service.NoteMediaServiceConfig{
				Bucket:            cfg.MediaBucketNotes,
				PublicBaseURL:     cfg.MediaPublicURL,
				MaxPhotoBytes:     cfg.NotePhotoMaxBytes,
				ImageMaxDimension: cfg.ImageMaxDimension,
			},
		)
	}

	e := http.NewRouter(cfg.AllowOrigins)
	http.RegisterPreferences(e, cfg.DeviceToken, prefs)
	http.RegisterBackup(e, cfg.DeviceToken, prefs)
	http.RegisterNotes(e, cfg.DeviceToken, prefs, noteMedia)
	http.RegisterItineraries(e, cfg.DeviceToken, prefs)
	http.RegisterTrips(e, cfg.DeviceToken, prefs, notifications)
	http.RegisterNotifications(e, cfg.DeviceToken, prefs, notifications)
	http.RegisterPlaces(e, cfg.DeviceToken, client)
	http.RegisterSwagger(e)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func openSettings(ctx context.Context, cfg config.Config) ports.SettingsStore {
	switch cfg.SettingsDriver {
	case "postgres":
		if cfg.SettingsDSN == "" {
			log.Fatal("SETTINGS_DSN is required with SETTINGS_DRIVER=postgres")
		}
		db, err := postgres.New(cfg.SettingsDSN)
		if err != nil {
			log.Fatalf("settings store: %v", err)
		}
		store := postgres.NewSettingsStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalf("settings schema: %v", err)
		}
		return store
	case "sqlite", "":
		if err := os.MkdirAll(filepath.Dir(cfg.SettingsPath), 0o700); err != nil {
			log.Fatalf("settings dir: %v", err)
		}
		store, err := sqlite.New(cfg.SettingsPath)
		if err != nil {
			log.Fatalf("settings store: %v", err)
		}
		return store
	default:
		log.Fatalf("unknown settings driver %q", cfg.SettingsDriver)
		return nil
	}
}

// accessKey resolves the backend access key: the env var wins for
// development, otherwise the sealed vault file supplies it.
func accessKey(cfg config.Config) string {
	if cfg.AccessKeyEnv != "" {
		if cfg.VaultPassphrase != "" {
			if err := secrets.NewVault(cfg.VaultPath, cfg.VaultPassphrase).StoreAccessKey(cfg.AccessKeyEnv); err != nil {
				log.Printf("could not seed access key vault: %v", err)
			}
		}
		return cfg.AccessKeyEnv
	}
	if cfg.VaultPassphrase == "" {
		log.Fatal("either BACKEND_ACCESS_KEY or VAULT_PASSPHRASE must be set")
	}
	vault := secrets.NewVault(cfg.VaultPath, cfg.VaultPassphrase)
	key, err := vault.AccessKey()
	if err != nil {
		if errors.Is(err, secrets.ErrNoAccessKey) {
			log.Fatalf("no access key stored at %s; set BACKEND_ACCESS_KEY once to seed the vault", cfg.VaultPath)
		}
		log.Fatalf("access key vault: %v", err)
	}
	return key
}
