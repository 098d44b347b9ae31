// Пакет filestore — запись документов в директорию пространства имён.
// Обеспечивает streaming-запись с подсчётом SHA-256 на лету поверх
// эксклюзивно созданного файла с версионированным именем.
package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/bigkaa/document-intake/internal/storage/version"
)

// ErrEmptyName — имя файла пустое после нормализации.
var ErrEmptyName = errors.New("пустое имя файла")

// FileStore — запись файлов документов.
type FileStore struct {
	fs       afero.Fs
	resolver *version.Resolver
}

// SaveResult — результат сохранения файла.
type SaveResult struct {
	// Name — итоговое имя файла (с суффиксом версии, если он понадобился)
	Name string
	// Path — путь файла на файловой системе
	Path string
	// Size — размер записанных данных в байтах
	Size int64
	// Checksum — SHA-256 хэш содержимого файла
	Checksum string
}

// New создаёт FileStore поверх fs.
func New(fs afero.Fs) *FileStore {
	return &FileStore{
		fs:       fs,
		resolver: version.New(fs),
	}
}

// Save записывает данные из reader в dir под первым свободным именем,
// производным от desiredName. Существующие файлы не перезаписываются.
//
// Паттерн: эксклюзивное создание → запись + SHA-256 → fsync → close.
// При ошибке записи созданный файл удаляется, чтобы слот версии
// не остался занят обрезанным документом.
func (s *FileStore) Save(dir, desiredName string, reader io.Reader) (*SaveResult, error) {
	if desiredName == "" {
		return nil, ErrEmptyName
	}

	name, f, err := s.resolver.Create(dir, desiredName)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, name)

	hasher := sha256.New()
	tee := io.TeeReader(reader, hasher)

	size, err := io.Copy(f, tee)
	if err != nil {
		f.Close()
		s.remove(path)
		return nil, fmt.Errorf("ошибка записи данных %s: %w", name, err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		s.remove(path)
		return nil, fmt.Errorf("ошибка fsync %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		s.remove(path)
		return nil, fmt.Errorf("ошибка закрытия файла %s: %w", name, err)
	}

	return &SaveResult{
		Name:     name,
		Path:     path,
		Size:     size,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (s *FileStore) remove(path string) {
	_ = s.fs.Remove(path)
}
