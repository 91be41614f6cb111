package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

const thumbWidth = 320

// SaveFile writes an uploaded file into dir under a timestamp-prefixed name
// and returns the stored filename.
func SaveFile(file multipart.File, header *multipart.FileHeader, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(header.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return name, nil
}

// MakeThumbnail renders a small preview next to the stored image. Non-image
// files and encode failures are skipped, the original upload already succeeded.
func MakeThumbnail(dir, name string) {
	src, err := imaging.Open(filepath.Join(dir, name))
	if err != nil {
		return
	}
	thumb := imaging.Resize(src, thumbWidth, 0, imaging.Lanczos)
	_ = imaging.Save(thumb, filepath.Join(dir, "thumb_"+name))
}
