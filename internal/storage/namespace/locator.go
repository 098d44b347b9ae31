package namespace

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/bigkaa/document-intake/internal/storage/version"
)

// ContentTypeBinary — тип содержимого отдаваемого подписанного документа.
const ContentTypeBinary = "application/octet-stream"

// Document — открытый подписанный документ. Вызывающий код обязан закрыть File.
type Document struct {
	Name        string
	File        afero.File
	Size        int64
	ModTime     time.Time
	ContentType string
}

// LocateSignedDocument находит текущий подписанный документ субъекта.
//
// Выбирается обычный файл с наибольшим временем модификации. При равенстве
// времени побеждает больший номер версии (contract_v10.pdf старше
// contract_v9.pdf), затем лексикографически большее имя.
// Поддиректории игнорируются.
func (s *Store) LocateSignedDocument(subjectID string) (*Document, error) {
	ns, err := s.Lookup(subjectID)
	if err != nil {
		return nil, err
	}

	authDir := filepath.Join(ns.Dir, s.authDir)
	if err := s.requireDir(authDir); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(s.fs, authDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", authDir, err)
	}

	var (
		best    string
		bestMod time.Time
		found   bool
	)
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		mod := e.ModTime()
		if !found || mod.After(bestMod) || (mod.Equal(bestMod) && newerName(e.Name(), best)) {
			best, bestMod, found = e.Name(), mod, true
		}
	}
	if !found {
		return nil, ErrNoDocument
	}

	path := filepath.Join(authDir, best)
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия документа %s: %w", path, err)
	}

	// Размер и время берём с открытого дескриптора
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка получения информации о документе %s: %w", path, err)
	}

	return &Document{
		Name:        best,
		File:        f,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: ContentTypeBinary,
	}, nil
}

// newerName сравнивает имена с одинаковым временем модификации.
func newerName(name, than string) bool {
	a, b := version.Number(name), version.Number(than)
	if a != b {
		return a > b
	}
	return name > than
}
