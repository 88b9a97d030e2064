package util

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ZhaoZeLuWei/HelpMe/configs"
	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
)

const maxExtLength = 10

// ImageStorage keeps uploaded images on disk under Dir. Stored images are
// addressed by public paths of the form <PublicPrefix>/<name>.
type ImageStorage struct {
	Dir          string
	PublicPrefix string
	MaxFileSize  int64
}

func NewImageStorage(cfg *configs.UploadConfig) (*ImageStorage, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", cfg.Dir)
	}
	prefix := strings.TrimRight(cfg.PublicPrefix, "/")
	if prefix == "" {
		prefix = "/img"
	}
	return &ImageStorage{Dir: cfg.Dir, PublicPrefix: prefix, MaxFileSize: cfg.MaxFileSize}, nil
}

// GenerateFilename builds <unixmillis>-<uuid><ext>.
func GenerateFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) > maxExtLength || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}

// SaveImage stores one uploaded image and returns its public path.
func (s *ImageStorage) SaveImage(file *multipart.FileHeader) (string, error) {
	if s.MaxFileSize > 0 && file.Size > s.MaxFileSize {
		return "", BadRequest(constants.ErrMsgFileTooLarge)
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", errors.Wrap(err, "detect upload type")
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", BadRequest(constants.ErrMsgInvalidFileType)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "rewind upload")
	}

	name := GenerateFilename(file.Filename)
	if filepath.Ext(name) == "" {
		name += mtype.Extension()
	}

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", errors.Wrap(err, "create image file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", errors.Wrap(err, "write image file")
	}

	return path.Join(s.PublicPrefix, name), nil
}

// SaveImages stores every file or none of them.
func (s *ImageStorage) SaveImages(files []*multipart.FileHeader, maxFiles int) ([]string, error) {
	if maxFiles > 0 && len(files) > maxFiles {
		return nil, BadRequest(constants.ErrMsgTooManyFiles)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		p, err := s.SaveImage(f)
		if err != nil {
			s.Cleanup(paths)
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Resolve maps a public path to a file inside Dir.
func (s *ImageStorage) Resolve(publicPath string) (string, error) {
	prefix := s.PublicPrefix + "/"
	if !strings.HasPrefix(publicPath, prefix) {
		return "", BadRequest(constants.ErrMsgInvalidUploadPath)
	}
	name := strings.TrimPrefix(publicPath, prefix)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", BadRequest(constants.ErrMsgInvalidUploadPath)
	}
	return filepath.Join(s.Dir, name), nil
}

// Remove deletes a stored image. A missing file is reported as not found.
func (s *ImageStorage) Remove(publicPath string) error {
	full, err := s.Resolve(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return NewHTTPError(http.StatusNotFound, constants.ErrMsgNotFound)
		}
		return errors.Wrap(err, "remove image")
	}
	return nil
}

// Cleanup removes stored images, ignoring any failure.
func (s *ImageStorage) Cleanup(paths []string) {
	for _, p := range paths {
		if full, err := s.Resolve(p); err == nil {
			_ = os.Remove(full)
		}
	}
}
