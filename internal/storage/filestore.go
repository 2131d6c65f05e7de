package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrFileMissing = errors.New("file not found on disk")

// FileStore 把简历文件保存在本地目录中，文件名由 uuid 生成
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

type StoredFile struct {
	Name string
	Path string
	Size int64
}

// Save 写入一个新文件，ext 不带点
func (s *FileStore) Save(ext string, r io.Reader) (*StoredFile, error) {
	name := uuid.NewString()
	if ext != "" {
		name += "." + strings.ToLower(ext)
	}
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}

	size, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	return &StoredFile{Name: name, Path: path, Size: size}, nil
}

func (s *FileStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrFileMissing
	}
	return data, err
}

// Remove 删除文件，文件本来就不存在时不报错
func (s *FileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
