// Пакет version — подбор имени файла без коллизий внутри директории.
//
// Для желаемого имени base+ext сначала пробуется само имя (версия 0),
// затем base_v1+ext, base_v2+ext и т.д. Каждая попытка выполняет эксклюзивное
// создание файла (O_CREATE|O_EXCL), поэтому проверка существования и
// создание выполняются одной операцией: существующий файл никогда не
// перезаписывается. Дополнительно попытки для одного ключа (dir, base, ext)
// сериализуются внутри процесса.
package version

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// MaxVersions — максимальный номер версии, после которого подбор прекращается.
const MaxVersions = 10000

// MaxNameLen — предельная длина имени файла в байтах (NAME_MAX).
const MaxNameLen = 255

// suffixReserve — место под самый длинный суффикс "_v10000".
var suffixReserve = len("_v") + len(strconv.Itoa(MaxVersions))

// ErrVersionsExhausted — все номера версий до MaxVersions заняты.
var ErrVersionsExhausted = errors.New("исчерпаны номера версий файла")

// filePerm — права на создаваемые файлы документов.
const filePerm = 0o640

// Resolver — подбор свободного имени и эксклюзивное создание файла.
// Безопасен для конкурентного использования.
type Resolver struct {
	fs    afero.Fs
	locks *keyedMutex
}

// New создаёт Resolver поверх файловой системы fs.
func New(fs afero.Fs) *Resolver {
	return &Resolver{
		fs:    fs,
		locks: newKeyedMutex(),
	}
}

// Split разбивает имя файла на основу и расширение.
// Расширение — суффикс начиная с последней точки; ведущая точка
// расширением не считается (".profile" → ".profile", "").
func Split(name string) (base, ext string) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || strings.Trim(name[:idx], ".") == "" {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// Candidate возвращает имя версии n: base+ext для n == 0, base_v{n}+ext иначе.
func Candidate(base, ext string, n int) string {
	if n == 0 {
		return base + ext
	}
	return base + "_v" + strconv.Itoa(n) + ext
}

// Number возвращает номер версии n для имени вида base_v{n}+ext
// и 0 для имени без такого суффикса.
func Number(name string) int {
	base, _ := Split(name)
	idx := strings.LastIndex(base, "_v")
	if idx < 0 {
		return 0
	}
	digits := base[idx+2:]
	if digits == "" || digits[0] == '0' || len(digits) > len(strconv.Itoa(MaxVersions)) {
		return 0
	}
	n := 0
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0
		}
		n = n*10 + int(digits[i]-'0')
	}
	if n > MaxVersions {
		return 0
	}
	return n
}

// Fit разбивает имя как Split и укорачивает основу так, чтобы
// Candidate(base, ext, MaxVersions) помещался в MaxNameLen байт.
// Слишком длинное расширение считается частью основы.
func Fit(name string) (base, ext string) {
	base, ext = Split(name)
	budget := MaxNameLen - suffixReserve
	if len(ext) >= budget {
		base, ext = base+ext, ""
	}
	if limit := budget - len(ext); len(base) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(base[cut]) {
			cut--
		}
		base = base[:cut]
	}
	return base, ext
}

// Create эксклюзивно создаёт файл с первым свободным именем в dir
// и возвращает итоговое имя и открытый на запись файл.
// Вызывающий код обязан закрыть файл.
func (r *Resolver) Create(dir, desiredName string) (string, afero.File, error) {
	base, ext := Fit(desiredName)

	unlock := r.locks.Lock(lockKey(dir, base, ext))
	defer unlock()

	for n := 0; n <= MaxVersions; n++ {
		name := Candidate(base, ext, n)
		f, err := r.fs.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
		if err == nil {
			return name, f, nil
		}
		if errors.Is(err, os.ErrExist) {
			continue
		}
		return "", nil, fmt.Errorf("ошибка создания файла %s: %w", name, err)
	}

	return "", nil, fmt.Errorf("%w: %s", ErrVersionsExhausted, desiredName)
}

// Resolve возвращает имя, которое получил бы следующий Create, не создавая файл.
// Результат информативен: между Resolve и записью имя может быть занято.
func (r *Resolver) Resolve(dir, desiredName string) (string, error) {
	base, ext := Fit(desiredName)

	for n := 0; n <= MaxVersions; n++ {
		name := Candidate(base, ext, n)
		_, err := r.fs.Stat(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("ошибка проверки файла %s: %w", name, err)
		}
	}

	return "", fmt.Errorf("%w: %s", ErrVersionsExhausted, desiredName)
}

// lockKey — ключ сериализации для (dir, base, ext).
func lockKey(dir, base, ext string) string {
	return filepath.Clean(dir) + "\x00" + base + "\x00" + ext
}
