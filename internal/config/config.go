package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	AllowOrigins []string
	DeviceToken  string

	SettingsDriver string
	SettingsPath   string
	SettingsDSN    string

	BackendBaseURL  string
	VaultPath       string
	VaultPassphrase string
	AccessKeyEnv    string

	LogstashTCPAddr string

	MediaEndpoint     string
	MediaAccessKey    string
	MediaSecretKey    string
	MediaUseSSL       bool
	MediaBucketNotes  string
	MediaPublicURL    string
	NotePhotoMaxBytes int64
	ImageMaxDimension int
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	photoMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("NOTE_PHOTO_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		photoMax = v
	}

	maxDimension := 1600
	if v, err := strconv.Atoi(getenv("IMAGE_MAX_DIMENSION", "1600")); err == nil && v > 0 {
		maxDimension = v
	}

	dataDir := getenv("DATA_DIR", defaultDataDir())

	return Config{
		Port:         getenv("PORT", "7080"),
		AllowOrigins: splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		DeviceToken:  getenv("DEVICE_TOKEN", ""),

		SettingsDriver: getenv("SETTINGS_DRIVER", "sqlite"),
		SettingsPath:   getenv("SETTINGS_PATH", dataDir+"/settings.db"),
		SettingsDSN:    getenv("SETTINGS_DSN", ""),

		BackendBaseURL:  must("BACKEND_BASE_URL"),
		VaultPath:       getenv("VAULT_PATH", dataDir+"/access_key.vault"),
		VaultPassphrase: getenv("VAULT_PASSPHRASE", ""),
		AccessKeyEnv:    getenv("BACKEND_ACCESS_KEY", ""),

		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		MediaEndpoint:     getenv("MEDIA_ENDPOINT", ""),
		MediaAccessKey:    getenv("MEDIA_ACCESS_KEY", ""),
		MediaSecretKey:    getenv("MEDIA_SECRET_KEY", ""),
		MediaUseSSL:       getenv("MEDIA_USE_SSL", "false") == "true",
		MediaBucketNotes:  getenv("MEDIA_BUCKET_NOTES", "roamnest-notes"),
		MediaPublicURL:    getenv("MEDIA_PUBLIC_URL", ""),
		NotePhotoMaxBytes: photoMax,
		ImageMaxDimension: maxDimension,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home + "/.roamnest"
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
