package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Deekshi23/portfolio/internal/model"
	"github.com/google/uuid"
)

const metaSuffix = ".json"

// LocalStorage はローカルファイルシステムに画像を保存する ImageStore 実装。
// 画像本体は <baseDir>/<id>、メタデータは <baseDir>/<id>.json に置く。
type LocalStorage struct {
	baseDir string
	now     func() time.Time
}

// NewLocalStorage は LocalStorage を生成する。
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{
		baseDir: baseDir,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var _ ImageStore = (*LocalStorage)(nil)

func (s *LocalStorage) Save(_ context.Context, filename, contentType string, data io.Reader) (*model.ProfileImage, error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}

	id := uuid.NewString()
	dest := filepath.Join(s.baseDir, id)

	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("storage: create: %w", err)
	}
	size, err := io.Copy(f, data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("storage: write: %w", err)
	}

	img := &model.ProfileImage{
		ID:          id,
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Size:        size,
		UploadedAt:  s.now(),
	}
	meta, err := json.Marshal(img)
	if err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("storage: encode metadata: %w", err)
	}
	if err := os.WriteFile(dest+metaSuffix, meta, 0o644); err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("storage: write metadata: %w", err)
	}
	return img, nil
}

func (s *LocalStorage) Open(_ context.Context, id string) (*model.ProfileImage, io.ReadCloser, error) {
	// ID は UUID のみ受け付ける (パストラバーサル防止)
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil, ErrNotFound
	}

	img, err := s.readMeta(filepath.Join(s.baseDir, id+metaSuffix))
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.baseDir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("storage: open: %w", err)
	}
	return img, f, nil
}

func (s *LocalStorage) Latest(_ context.Context) (*model.ProfileImage, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read dir: %w", err)
	}

	var latest *model.ProfileImage
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), metaSuffix) {
			continue
		}
		img, err := s.readMeta(filepath.Join(s.baseDir, e.Name()))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		if latest == nil || img.UploadedAt.After(latest.UploadedAt) {
			latest = img
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (s *LocalStorage) readMeta(path string) (*model.ProfileImage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read metadata: %w", err)
	}
	var img model.ProfileImage
	if err := json.Unmarshal(b, &img); err != nil {
		return nil, fmt.Errorf("storage: decode metadata: %w", err)
	}
	return &img, nil
}
