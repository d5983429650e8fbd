// Package storage 基于 afero 的附件 blob 存储。
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob key")
)

// Store 以 key（形如 profile_images/<user>/<file>）存取文件
type Store struct {
	fs        afero.Fs
	urlPrefix string
}

// New 以 root 为根目录构造存储；fs 为 nil 时使用操作系统文件系统
func New(fs afero.Fs, root, urlPrefix string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if root != "" {
		fs = afero.NewBasePathFs(fs, root)
	}
	return &Store{fs: fs, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// NewMemory 内存存储，用于测试
func NewMemory(urlPrefix string) *Store {
	return New(afero.NewMemMapFs(), "", urlPrefix)
}

// Blob 已写入对象的元信息
type Blob struct {
	Key      string
	Size     int64
	Checksum string
}

// Put 写入对象，返回大小和 sha256 校验和
func (s *Store) Put(key string, r io.Reader) (*Blob, error) {
	p, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	f, err := s.fs.Create(p)
	if err != nil {
		return nil, fmt.Errorf("create blob: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), r)
	if err != nil {
		_ = s.fs.Remove(p)
		return nil, fmt.Errorf("write blob: %w", err)
	}
	return &Blob{Key: key, Size: n, Checksum: hex.EncodeToString(h.Sum(nil))}, nil
}

// Open 打开对象读取
func (s *Store) Open(key string) (afero.File, error) {
	p, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete 删除对象，不存在时不报错
func (s *Store) Delete(key string) error {
	p, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL 对象的公开访问路径
func (s *Store) URL(key string) string {
	return s.urlPrefix + "/" + strings.TrimPrefix(key, "/")
}

func cleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || strings.ContainsRune(key, '\\') {
		return "", ErrInvalidKey
	}
	return strings.TrimPrefix(path.Clean("/"+key), "/"), nil
}
