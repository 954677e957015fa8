package storage

import (
	"context"
	"errors"
	"io"

	"github.com/Deekshi23/portfolio/internal/model"
)

// ErrNotFound は指定された画像が存在しない場合に返される。
var ErrNotFound = errors.New("storage: image not found")

// ImageStore はプロフィール画像の保存・取得を抽象化するインターフェース。
// ローカルファイルシステム実装と MongoDB GridFS 実装がある。
type ImageStore interface {
	// Save は data を保存し、採番された ID を含むメタデータを返す。
	Save(ctx context.Context, filename, contentType string, data io.Reader) (*model.ProfileImage, error)

	// Open は id の画像を開く。呼び出し側が ReadCloser を閉じること。
	Open(ctx context.Context, id string) (*model.ProfileImage, io.ReadCloser, error)

	// Latest は最後にアップロードされた画像のメタデータを返す。
	// 画像が 1 件もない場合は ErrNotFound。
	Latest(ctx context.Context) (*model.ProfileImage, error)
}
