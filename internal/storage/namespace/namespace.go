// Пакет namespace — пространства имён субъектов на файловой системе.
//
// Структура дерева:
//
//	<root>/<subject>/                 — документы субъекта
//	<root>/<subject>/<authorization>/ — подписанные документы
//
// Идентификатор субъекта нормализуется перед любым обращением к ФС.
package namespace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/bigkaa/document-intake/internal/domain/subject"
)

var (
	// ErrNamespaceNotFound — пространство имён (или его поддиректория) не существует.
	ErrNamespaceNotFound = errors.New("пространство имён не найдено")
	// ErrNoDocument — поддиректория подписанных документов пуста.
	ErrNoDocument = errors.New("подписанный документ не найден")
)

const dirPerm = 0o750

// Namespace — директория субъекта (или её поддиректория авторизации).
type Namespace struct {
	// SubjectID — нормализованный идентификатор субъекта
	SubjectID string
	// Dir — путь директории
	Dir string
}

// Store — доступ к пространствам имён внутри корневой директории.
type Store struct {
	fs      afero.Fs
	root    string
	authDir string
}

// New создаёт Store. authDir — имя поддиректории подписанных документов.
func New(fs afero.Fs, root, authDir string) *Store {
	return &Store{fs: fs, root: root, authDir: authDir}
}

// EnsureRoot создаёт корневую директорию, если её нет.
func (s *Store) EnsureRoot() error {
	if err := s.fs.MkdirAll(s.root, dirPerm); err != nil {
		return fmt.Errorf("не удалось создать корневую директорию %s: %w", s.root, err)
	}
	return nil
}

// EnsureNamespace создаёт директорию субъекта (идемпотентно).
func (s *Store) EnsureNamespace(subjectID string) (Namespace, error) {
	id, err := subject.Sanitize(subjectID)
	if err != nil {
		return Namespace{}, err
	}

	ns := Namespace{SubjectID: id, Dir: filepath.Join(s.root, id)}
	if err := s.fs.MkdirAll(ns.Dir, dirPerm); err != nil {
		return Namespace{}, fmt.Errorf("не удалось создать директорию %s: %w", ns.Dir, err)
	}
	return ns, nil
}

// EnsureAuthorization создаёт поддиректорию подписанных документов в ns.
func (s *Store) EnsureAuthorization(ns Namespace) (Namespace, error) {
	auth := Namespace{SubjectID: ns.SubjectID, Dir: filepath.Join(ns.Dir, s.authDir)}
	if err := s.fs.MkdirAll(auth.Dir, dirPerm); err != nil {
		return Namespace{}, fmt.Errorf("не удалось создать директорию %s: %w", auth.Dir, err)
	}
	return auth, nil
}

// Lookup возвращает существующее пространство имён субъекта.
func (s *Store) Lookup(subjectID string) (Namespace, error) {
	id, err := subject.Sanitize(subjectID)
	if err != nil {
		return Namespace{}, err
	}

	ns := Namespace{SubjectID: id, Dir: filepath.Join(s.root, id)}
	if err := s.requireDir(ns.Dir); err != nil {
		return Namespace{}, err
	}
	return ns, nil
}

// List возвращает имена записей верхнего уровня в пространстве имён
// субъекта, отсортированные по имени. Поддиректория авторизации
// включается в список как обычная запись.
func (s *Store) List(subjectID string) ([]string, error) {
	ns, err := s.Lookup(subjectID)
	if err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(s.fs, ns.Dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", ns.Dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// HasSignature сообщает, есть ли в поддиректории подписанных документов
// субъекта хотя бы один обычный файл. Поддиректории не учитываются,
// поэтому ответ согласован с LocateSignedDocument. Любая ошибка
// трактуется как отсутствие.
func (s *Store) HasSignature(subjectID string) bool {
	id, err := subject.Sanitize(subjectID)
	if err != nil {
		return false
	}

	entries, err := afero.ReadDir(s.fs, filepath.Join(s.root, id, s.authDir))
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Mode().IsRegular() {
			return true
		}
	}
	return false
}

// requireDir проверяет, что path существует и является директорией.
func (s *Store) requireDir(path string) error {
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNamespaceNotFound
		}
		return fmt.Errorf("ошибка проверки директории %s: %w", path, err)
	}
	if !info.IsDir() {
		return ErrNamespaceNotFound
	}
	return nil
}

// CheckReady проверяет, что корневая директория существует и доступна на запись.
// Возвращает статус ("ok", "fail") и сообщение.
func (s *Store) CheckReady() (status string, message string) {
	if err := s.requireDir(s.root); err != nil {
		return "fail", fmt.Sprintf("корневая директория %s недоступна: %v", s.root, err)
	}

	f, err := afero.TempFile(s.fs, s.root, ".ready-*")
	if err != nil {
		return "fail", fmt.Sprintf("корневая директория %s недоступна на запись: %v", s.root, err)
	}
	name := f.Name()
	f.Close()
	_ = s.fs.Remove(name)

	return "ok", "директория доступна на запись"
}
