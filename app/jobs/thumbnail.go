package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/bazaar/pkg/imaging"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
)

const thumbMaxWidth, thumbMaxHeight = 200, 200

// CreateThumbnail reads a product image from storage and writes a scaled
// copy next to it. Aspect ratio is preserved and images smaller than the
// bounds are left at their original size.
type CreateThumbnail struct {
	SourcePath    string `json:"source_path"`
	ThumbnailPath string `json:"thumbnail_path"`

	disk storage.Disk
}

func (CreateThumbnail) Name() string { return NameCreateThumbnail }

func (j *CreateThumbnail) Handle() error {
	src, err := j.disk.Get(j.SourcePath)
	if err != nil {
		return fmt.Errorf("read image %s: %w", j.SourcePath, err)
	}

	thumb, err := imaging.Thumbnail(src, j.ThumbnailPath, thumbMaxWidth, thumbMaxHeight)
	if err != nil {
		return fmt.Errorf("thumbnail %s: %w", j.SourcePath, err)
	}

	if err := j.disk.Put(j.ThumbnailPath, thumb); err != nil {
		return fmt.Errorf("store thumbnail %s: %w", j.ThumbnailPath, err)
	}

	logger.Info("thumbnail created", "source", j.SourcePath, "thumbnail", j.ThumbnailPath)
	return nil
}
