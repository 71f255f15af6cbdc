package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/interfaces"
	"github.com/bobmcallan/finote/internal/models"
)

// FileStore keeps one JSON file per series snapshot under basePath.
type FileStore struct {
	basePath string
	logger   *common.Logger
}

// NewFileStore creates a new FileStore and ensures the directory exists.
func NewFileStore(logger *common.Logger, path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path is empty")
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	logger.Debug().Str("path", path).Msg("FileStore opened")
	return &FileStore{basePath: path, logger: logger}, nil
}

// sanitizeKey makes a key safe for use as a filename.
// Replaces /, \, : with _ and collapses ".." to "_" to prevent path traversal.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func (fs *FileStore) filePath(key string, metric models.Metric) string {
	return filepath.Join(fs.basePath, sanitizeKey(key)+"."+sanitizeKey(string(metric))+".json")
}

func (fs *FileStore) GetSeries(_ context.Context, key string, metric models.Metric) (*models.SeriesSnapshot, error) {
	path := fs.filePath(key, metric)
	snap, err := readSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("series %s/%s: %w", key, metric, interfaces.ErrNotFound)
		}
		return nil, err
	}
	return snap, nil
}

func readSnapshot(path string) (*models.SeriesSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	var snap models.SeriesSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &snap, nil
}

// SaveSeries writes the snapshot atomically: temp file in the same directory, then rename.
func (fs *FileStore) SaveSeries(_ context.Context, snap *models.SeriesSnapshot) error {
	jsonData, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	tmpFile, err := os.CreateTemp(fs.basePath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, fs.filePath(snap.Key, snap.Metric)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (fs *FileStore) DeleteSeries(_ context.Context, key string, metric models.Metric) error {
	if err := os.Remove(fs.filePath(key, metric)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete series %s/%s: %w", key, metric, err)
	}
	return nil
}

// ListKeys reads every snapshot file; filenames are sanitised so the key comes from the content.
func (fs *FileStore) ListKeys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", fs.basePath, err)
	}

	keys := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		snap, err := readSnapshot(filepath.Join(fs.basePath, name))
		if err != nil {
			fs.logger.Warn().Err(err).Str("file", name).Msg("Skipping unreadable snapshot")
			continue
		}
		keys = append(keys, snap.Key+"/"+string(snap.Metric))
	}
	sort.Strings(keys)
	return keys, nil
}

func (fs *FileStore) Close() error {
	return nil
}
