package override

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png" // png icons
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-playground/validator/v10"
	_ "golang.org/x/image/webp" // webp icons
	"golang.org/x/sync/errgroup"
)

// ErrNotSquare is reported for icon images whose width and height differ.
var ErrNotSquare = errors.New("override: icon is not square")

const mapFile = "overrides.json"

var validate = validator.New()

// document is the JSON shape of one override object.
type document struct {
	Priority      *int      `json:"priority"`
	ItemRotation  []float64 `json:"item_rotation"`
	StageRotation []float64 `json:"stage_rotation"`
	IconPath      *string   `json:"icon_path"`
}

// Load reads every directory concurrently and merges them in the given
// order into a new Set. Unreadable directories fail the load; malformed
// files inside a directory are logged and skipped.
func Load(ctx context.Context, dirs ...string) (*Set, error) {
	results := make([]map[string]*Entry, len(dirs))

	g, ctx := errgroup.WithContext(ctx)
	for i, dir := range dirs {
		g.Go(func() error {
			entries, err := LoadDir(ctx, dir, filepath.Base(dir))
			if err != nil {
				return err
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := NewSet()
	for i, entries := range results {
		set.Merge(filepath.Base(dirs[i]), entries)
	}
	return set, nil
}

// LoadDir reads the overrides of one directory. Keys in the result are
// folded. Keys without a '/' are returned but never stored by a Set.
func LoadDir(ctx context.Context, dir, source string) (map[string]*Entry, error) {
	var icons, docs []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".png", ".webp":
			icons = append(icons, p)
		case ".json":
			if p != filepath.Join(dir, mapFile) {
				docs = append(docs, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("override: walk %s: %w", dir, err)
	}

	local := make(map[string]*Entry)

	for _, p := range icons {
		key := keyOf(dir, p)
		slogger().Debug("override: reading icon", "source", source, "key", key)
		img, err := readIcon(p)
		if err != nil {
			slogger().Error("override: skipping icon", "source", source, "key", key, "err", err)
			continue
		}
		local[Fold(key)] = &Entry{Source: source, Icon: img}
	}

	for _, p := range docs {
		key := keyOf(dir, p)
		slogger().Debug("override: reading json", "source", source, "key", key)
		var doc document
		if err := readJSON(p, &doc); err != nil {
			slogger().Error("override: skipping json", "source", source, "key", key, "err", err)
			continue
		}
		apply(local, key, source, &doc)
	}

	mp := filepath.Join(dir, mapFile)
	if _, err := os.Stat(mp); err == nil {
		var docs map[string]json.RawMessage
		if err := readJSON(mp, &docs); err != nil {
			slogger().Error("override: skipping "+mapFile, "source", source, "err", err)
			return local, nil
		}
		for key, raw := range docs {
			var doc document
			if err := json.Unmarshal(raw, &doc); err != nil {
				slogger().Warn("override: "+mapFile+" entry is not an object", "source", source, "key", key, "err", err)
				continue
			}
			apply(local, key, source, &doc)
		}
	}

	return local, nil
}

// apply merges doc into the entry for key, creating it if needed.
func apply(local map[string]*Entry, key, source string, doc *document) {
	k := Fold(key)
	e, ok := local[k]
	if !ok {
		e = &Entry{Source: source}
		local[k] = e
	}

	if doc.Priority != nil {
		e.Priority = *doc.Priority
	}
	if v, ok := vec3(doc.ItemRotation); ok {
		e.ItemRotation = v
	}
	if v, ok := vec3(doc.StageRotation); ok {
		e.StageRotation = v
	}
	if doc.IconPath != nil {
		ref := Fold(filepath.ToSlash(*doc.IconPath))
		target, ok := local[ref]
		switch {
		case !ok:
			slogger().Warn("override: icon_path does not exist", "source", source, "key", ref)
		case target.Icon == nil:
			slogger().Warn("override: icon_path is not a file", "source", source, "key", ref)
		default:
			e.Icon = target.Icon
		}
	}
}

// vec3 accepts exactly three components.
func vec3(v []float64) (*mgl64.Vec3, bool) {
	if v == nil || validate.Var(v, "len=3") != nil {
		return nil, false
	}
	return &mgl64.Vec3{v[0], v[1], v[2]}, true
}

func keyOf(dir, p string) string {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		rel = filepath.Base(p)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, path.Ext(rel))
}

func readIcon(p string) (image.Image, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(p), err)
	}
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrNotSquare, filepath.Base(p), b.Dx(), b.Dy())
	}
	return img, nil
}

func readJSON(p string, v any) error {
	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
