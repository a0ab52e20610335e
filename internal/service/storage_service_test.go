package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"gmc_backend/internal/config"
	"gmc_backend/internal/util"
	"gmc_backend/pkg/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewStorageServiceLocal(t *testing.T) {
	logger.Log = zap.NewNop()

	cfg := &config.Config{
		Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
	}
	svc := NewStorageService(cfg)
	if _, ok := svc.Provider.(*LocalStorageProvider); !ok {
		t.Fatalf("expected local provider, got %T", svc.Provider)
	}
}

func TestNewStorageServiceMinioFallback(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger.Log = zap.New(core)

	cfg := &config.Config{
		Storage: config.StorageConfig{
			Type:          util.StorageMinio,
			MinioEndpoint: "not a valid endpoint",
			LocalPath:     t.TempDir(),
		},
	}
	svc := NewStorageService(cfg)

	// 回退到本地盘，且失败原因要留痕
	if _, ok := svc.Provider.(*LocalStorageProvider); !ok {
		t.Fatalf("expected fallback to local provider, got %T", svc.Provider)
	}
	if logs.Len() == 0 {
		t.Error("minio init failure was not logged")
	}
}

func TestLocalStorageUpload(t *testing.T) {
	logger.Log = zap.NewNop()

	dir := t.TempDir()
	provider := &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: dir}}

	content := []byte("%PDF-1.4 test")
	url, err := provider.Upload(context.Background(), "reports/1/report.pdf", bytes.NewReader(content), int64(len(content)), util.MimePDF)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "/uploads/reports/1/report.pdf" {
		t.Errorf("url = %q", url)
	}

	saved, err := os.ReadFile(filepath.Join(dir, "reports", "1", "report.pdf"))
	if err != nil {
		t.Fatalf("read uploaded file: %v", err)
	}
	if !bytes.Equal(saved, content) {
		t.Error("uploaded content does not match")
	}

	if err := provider.Delete(context.Background(), "reports/1/report.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "reports", "1", "report.pdf")); !os.IsNotExist(err) {
		t.Error("file still present after delete")
	}
}
