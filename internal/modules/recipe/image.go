package recipe

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// dataURIPattern — картинка вида data:image/<ext>;base64,<payload>.
var dataURIPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,(.+)$`)

// ImageStore декодирует data-URI картинки и кладёт их на диск под
// uuid-именами; отдаются они статикой по urlBase.
type ImageStore struct {
	baseDir string
	urlBase string
}

func NewImageStore(baseDir, urlBase string) *ImageStore {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if urlBase == "" {
		urlBase = "/media"
	}
	return &ImageStore{baseDir: baseDir, urlBase: urlBase}
}

// SaveDataURI валидирует и сохраняет картинку, возвращает публичный URL.
// Любой битый payload — ErrInvalidImage, не паника.
func (s *ImageStore) SaveDataURI(data string) (string, error) {
	m := dataURIPattern.FindStringSubmatch(data)
	if m == nil {
		return "", ErrInvalidImage
	}

	ext := strings.ToLower(m[1])
	switch ext {
	case "jpeg":
		ext = "jpg"
	case "svg+xml":
		ext = "svg"
	}

	raw, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil || len(raw) == 0 {
		return "", ErrInvalidImage
	}

	dir := filepath.Join(s.baseDir, "recipes")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + "." + ext
	if err := os.WriteFile(filepath.Join(dir, filename), raw, 0644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return s.urlBase + "/recipes/" + filename, nil
}
