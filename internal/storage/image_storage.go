package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
)

// URLPrefix путь, под которым раздаются сохранённые файлы.
const URLPrefix = "/media"

// Количество байт, по которым определяется тип файла.
const sniffLen = 261

// Разрешённые типы изображений и расширения, под которыми они сохраняются.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var (
	errFileTooLarge = func(limit int64) error {
		return apperror.Validation([]apperror.FieldError{{
			Field:   "image",
			Message: fmt.Sprintf("размер файла превышает %d МБ", limit/(1024*1024)),
		}})
	}
	errNotImage = apperror.Validation([]apperror.FieldError{{
		Field:   "image",
		Message: "разрешены только изображения jpeg, png, gif, webp",
	}})
	errEmptyFile = apperror.Validation([]apperror.FieldError{{Field: "image", Message: "файл пустой"}})
)

// ImageStorage хранит изображения товаров на диске.
type ImageStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewImageStorage создаёт файловое хранилище.
func NewImageStorage(rootPath string, maxUploadMB int64) (*ImageStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &ImageStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Root каталог, который раздаётся по URLPrefix.
func (s *ImageStorage) Root() string {
	return s.rootPath
}

// Save проверяет тип по содержимому и сохраняет файл.
// Возвращает URL вида /media/products/<product>/<file>.
func (s *ImageStorage) Save(ctx context.Context, productID uuid.UUID, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("storage: ошибка чтения файла: %w", err)
	}
	if n == 0 {
		return "", errEmptyFile
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", errNotImage
	}
	ext, ok := allowedImageTypes[kind.MIME.Value]
	if !ok {
		return "", errNotImage
	}

	productDir := filepath.Join(s.rootPath, "products", productID.String())
	if err := os.MkdirAll(productDir, 0o755); err != nil {
		return "", fmt.Errorf("storage: не удалось создать каталог товара: %w", err)
	}

	fileName := fmt.Sprintf("%s_%d%s", baseName(originalName), time.Now().UnixNano(), ext)
	targetPath := filepath.Join(productDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return "", errFileTooLarge(s.maxUploadBytes)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return path.Join(URLPrefix, "products", productID.String(), fileName), nil
}

// Remove удаляет файл по его URL. Отсутствующий файл не ошибка;
// URL вне хранилища игнорируется.
func (s *ImageStorage) Remove(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relative, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(relative))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil
	}

	if err := os.Remove(filepath.Join(s.rootPath, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// baseName оставляет от имени файла только безопасные символы.
func baseName(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
		if b.Len() >= 40 {
			break
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}
