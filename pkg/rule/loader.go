package rule

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/praetorian-inc/scanutil/pkg/types"
	"gopkg.in/yaml.v3"
)

// Loader reads signature catalogs from a filesystem.
type Loader struct {
	fs fs.FS
}

// NewLoader creates a loader over the embedded builtin catalog.
func NewLoader() *Loader {
	return &Loader{
		fs: builtinFS,
	}
}

// NewLoaderWithFS creates a loader with a custom filesystem. Catalog files
// are expected under rules/*.yml.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{
		fs: fsys,
	}
}

// Parse decodes catalog YAML into signatures, in file order.
func (l *Loader) Parse(data []byte) ([]*types.Signature, error) {
	var file yamlCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	sigs := make([]*types.Signature, 0, len(file.Signatures))
	for i, ys := range file.Signatures {
		sig, err := convertYAMLSignature(ys)
		if err != nil {
			return nil, fmt.Errorf("signature %d (%s): %w", i, ys.ID, err)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// Load reads every rules/*.yml file in lexical order and returns the
// validated catalog.
func (l *Loader) Load() ([]*types.Signature, error) {
	paths, err := fs.Glob(l.fs, "rules/*.yml")
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var catalog []*types.Signature
	for _, path := range paths {
		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		sigs, err := l.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		catalog = append(catalog, sigs...)
	}

	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

var (
	builtinOnce    sync.Once
	builtinCatalog []*types.Signature
	builtinErr     error
)

// Builtin returns the embedded catalog. It is parsed once per process and
// must be treated as read-only.
func Builtin() ([]*types.Signature, error) {
	builtinOnce.Do(func() {
		builtinCatalog, builtinErr = NewLoader().Load()
	})
	return builtinCatalog, builtinErr
}

// convertYAMLSignature converts yamlSignature to types.Signature and
// computes StructuralID.
func convertYAMLSignature(ys yamlSignature) (*types.Signature, error) {
	category, err := types.ParseCategory(ys.Category)
	if err != nil {
		return nil, err
	}

	sig := &types.Signature{
		ID:          ys.ID,
		Name:        ys.Name,
		Pattern:     ys.Pattern,
		Extension:   ys.Extension,
		Category:    category,
		Description: ys.Description,
		References:  ys.References,
	}
	sig.StructuralID = sig.ComputeStructuralID()
	return sig, nil
}
