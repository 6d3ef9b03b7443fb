package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkwell-edu/inkwell-backend/internal/platform/envutil"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

// Categories mirror the upload destinations for generated images.
const (
	CategoryTopicBackgrounds   = "topic_backgrounds"
	CategoryAttemptCorrections = "attempt_corrections"
)

// Store writes generated media to the local filesystem and hands back
// the URL path it is served under.
type Store interface {
	// Save writes data under <root>/<category>/<name> and returns the
	// public URL path ("/media/<category>/<name>").
	Save(category, name string, data []byte) (string, error)

	// Root is the directory served at URLPrefix.
	Root() string
}

const URLPrefix = "/media"

type store struct {
	log  *logger.Logger
	root string
}

func NewStore(log *logger.Logger) (Store, error) {
	root := envutil.Get("MEDIA_ROOT", "./media")
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &store{log: log.With("service", "MediaStore"), root: abs}, nil
}

func (s *store) Root() string { return s.root }

func (s *store) Save(category, name string, data []byte) (string, error) {
	category = strings.Trim(category, "/")
	name = filepath.Base(name)
	if category == "" || name == "" || name == "." {
		return "", fmt.Errorf("invalid media path %q/%q", category, name)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty media payload for %s/%s", category, name)
	}

	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}

	s.log.Debug("Media file written", "path", path, "bytes", len(data))
	return URLPrefix + "/" + category + "/" + name, nil
}
