package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"livestage/internal/logging"
)

// Scanner walks a source tree and builds the media index.
type Scanner struct {
	classifier *Classifier
	skipRoots  []string
	logger     *slog.Logger
}

// NewScanner constructs a Scanner. skipRoots lists directories (typically
// the two destination collections) that must never be ingested, so repeated
// runs do not re-scan their own output.
func NewScanner(classifier *Classifier, skipRoots []string, logger *slog.Logger) *Scanner {
	cleaned := make([]string, 0, len(skipRoots))
	for _, root := range skipRoots {
		if trimmed := strings.TrimSpace(root); trimmed != "" {
			cleaned = append(cleaned, filepath.Clean(trimmed))
		}
	}
	return &Scanner{
		classifier: classifier,
		skipRoots:  cleaned,
		logger:     logging.NewComponentLogger(logger, "catalog"),
	}
}

// Scan recurses root and classifies every regular file. Unreadable entries
// are logged and recorded as warnings; a single bad entry never aborts the
// scan. Symbolic links are skipped entirely.
func (s *Scanner) Scan(ctx context.Context, root string) (*Index, error) {
	logger := logging.WithContext(ctx, s.logger)
	idx := newIndex()

	root = filepath.Clean(root)
	logger.Info("scanning directory", logging.String(logging.FieldPath, root))

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkErr != nil {
			idx.Warnings = append(idx.Warnings, Warning{Path: path, Reason: walkErr.Error()})
			logger.Warn("skipping unreadable entry",
				logging.String(logging.FieldPath, path),
				logging.Error(walkErr),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if d.IsDir() {
			if s.shouldSkipDir(path) {
				logger.Debug("skipping output directory", logging.String(logging.FieldPath, path))
				return fs.SkipDir
			}
			return nil
		}

		idx.TotalScanned++

		info, err := d.Info()
		if err != nil {
			idx.Warnings = append(idx.Warnings, Warning{Path: path, Reason: err.Error()})
			logger.Warn("skipping unreadable file",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
			return nil
		}

		name := d.Name()
		ext := extOf(name)
		idx.add(&MediaFile{
			Path:      path,
			Dir:       filepath.Dir(path),
			Base:      strings.TrimSuffix(name, ext),
			Ext:       ext,
			Kind:      s.classifier.Classify(name),
			SizeBytes: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("scan complete",
		logging.Int("scanned", idx.TotalScanned),
		logging.Int("media", len(idx.Files)),
		logging.Int("others", len(idx.Others)),
		logging.Int("warnings", len(idx.Warnings)),
	)
	return idx, nil
}

func (s *Scanner) shouldSkipDir(path string) bool {
	cleaned := filepath.Clean(path)
	for _, root := range s.skipRoots {
		if cleaned == root {
			return true
		}
	}
	return false
}
