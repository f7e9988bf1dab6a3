package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_URL", "SECRET_KEY", "REDIS_ADDR",
		"MONGO_URI", "MONGO_DB", "MINIO_ENDPOINT", "MINIO_BUCKET", "MINIO_USE_SSL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.MongoDB != "socialapi" {
		t.Errorf("MongoDB = %q, want socialapi", cfg.MongoDB)
	}
	if cfg.MinioBucket != "post-attachments" {
		t.Errorf("MinioBucket = %q, want post-attachments", cfg.MinioBucket)
	}
	if cfg.MinioUseSSL {
		t.Error("MinioUseSSL should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_URL", "postgres://localhost/app")
	t.Setenv("SECRET_KEY", "s3cr3t")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://localhost/app" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.SecretKey != "s3cr3t" {
		t.Errorf("SecretKey = %q", cfg.SecretKey)
	}
	if !cfg.MinioUseSSL {
		t.Error("MinioUseSSL should be true")
	}
}
