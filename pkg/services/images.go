package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"gitcms/pkg/models"
)

// SanitizeFilename lower-cases a filename and replaces every character
// other than letters, digits, '.' and '-' so the result is safe as a
// store path segment.
func SanitizeFilename(name string) string {
	name = strings.ToLower(path.Base(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// UploadImage stores file bytes under the image directory and refreshes
// the listing. Uploading a name that already exists replaces that asset
// in place; the panel does not treat it as a conflict.
func (sy *Syncer) UploadImage(ctx context.Context, s *Session, filename string, data []byte) (models.ImageAsset, error) {
	name := SanitizeFilename(filename)
	if name == "" || name == "." {
		return models.ImageAsset{}, fmt.Errorf("invalid image filename %q", filename)
	}
	target := sy.ImageDir + "/" + name

	// An existing asset's revision makes the write an update rather
	// than a rejected creation.
	revision := ""
	for _, asset := range s.Cache.Images() {
		if asset.Path == target {
			revision = asset.Revision
			break
		}
	}

	s.setStatus(StatusUploading)
	if _, err := s.Store.WriteDocument(ctx, target, data, revision,
		fmt.Sprintf("Upload %s via gitcms", target)); err != nil {
		s.setError(err)
		return models.ImageAsset{}, err
	}

	assets, err := sy.refreshImages(ctx, s)
	if err != nil {
		s.setError(err)
		return models.ImageAsset{}, err
	}
	s.setStatus(StatusIdle)
	sy.logger.Info("image uploaded", zap.String("path", target))

	for _, asset := range assets {
		if asset.Path == target {
			return asset, nil
		}
	}
	return models.ImageAsset{Path: target, Name: name}, nil
}

// DeleteImage removes an asset at its current revision and refreshes
// the listing. Collection records referencing the asset are left alone;
// the public renderer falls back to a placeholder.
func (sy *Syncer) DeleteImage(ctx context.Context, s *Session, assetPath string) error {
	var revision string
	for _, asset := range s.Cache.Images() {
		if asset.Path == assetPath {
			revision = asset.Revision
			break
		}
	}
	if revision == "" {
		return fmt.Errorf("unknown image %q", assetPath)
	}

	s.setStatus(StatusSaving)
	if err := s.Store.DeleteDocument(ctx, assetPath, revision,
		fmt.Sprintf("Delete %s via gitcms", assetPath)); err != nil {
		s.setError(err)
		return err
	}

	if _, err := sy.refreshImages(ctx, s); err != nil {
		s.setError(err)
		return err
	}
	s.setStatus(StatusIdle)
	sy.logger.Info("image deleted", zap.String("path", assetPath))
	return nil
}

func (sy *Syncer) refreshImages(ctx context.Context, s *Session) ([]models.ImageAsset, error) {
	assets, err := s.Store.ListDirectory(ctx, sy.ImageDir)
	if err != nil {
		return nil, fmt.Errorf("refresh image listing: %w", err)
	}
	s.Cache.SetImages(assets)
	return assets, nil
}
