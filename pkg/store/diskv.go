package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/pricematrix/pkg/matrix"
)

const (
	// documentKey names the single matrix document; one per deployment.
	documentKey   = "pricing"
	documentExt   = ".json"
	tempDirectory = ".tmp"
)

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

// Load creates a Persistence backed by diskv rooted at cfg.BasePath().
func Load(cfg Config) (Persistence, error) {
	basePath := strings.TrimSpace(cfg.BasePath())
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		TempDir:           filepath.Join(basePath, tempDirectory),
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

func (p *persistence) Load(_ context.Context) (matrix.Matrix, error) {
	if !p.d.Has(documentKey) {
		return nil, ErrNotFound
	}
	val, err := p.d.Read(documentKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: read matrix: %w", err)
	}
	return decode(val)
}

func (p *persistence) Save(_ context.Context, m matrix.Matrix) error {
	data, err := matrix.Encode(m)
	if err != nil {
		return fmt.Errorf("store: encode matrix: %w", err)
	}
	if err := p.d.Write(documentKey, data); err != nil {
		return fmt.Errorf("store: write matrix: %w", err)
	}
	return nil
}

func (p *persistence) Ping(_ context.Context) error {
	info, err := os.Stat(p.basePath)
	if err != nil {
		return fmt.Errorf("store: stat base path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("store: %s is not a directory", p.basePath)
	}
	return nil
}

func (p *persistence) Close() error {
	return nil
}

func (p *persistence) documentPath() string {
	return filepath.Join(p.basePath, documentKey+documentExt)
}

func keyToPathTransform(s string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{},
		FileName: s + documentExt,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.TrimSuffix(pathKey.FileName, documentExt)
}
