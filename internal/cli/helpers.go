package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tif", ".tiff", ".gif"}

// faceKey maps a face letter or center colour name to its face.
func faceKey(s string) (types.Face, bool) {
	s = strings.TrimSpace(s)
	if f := types.Face(strings.ToUpper(s)); f.Valid() {
		return f, true
	}
	return types.Label(strings.ToLower(s)).Face()
}

// faceImagePaths finds one image per face in dir. Files are matched by
// base name, either the face letter or its center colour.
func faceImagePaths(dir string) (map[types.Face]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := make(map[types.Face]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !isImageExt(ext) {
			continue
		}
		f, ok := faceKey(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if !ok {
			continue
		}
		if _, dup := paths[f]; dup {
			continue
		}
		paths[f] = filepath.Join(dir, e.Name())
	}
	return paths, nil
}

func isImageExt(ext string) bool {
	for _, e := range imageExts {
		if ext == e {
			return true
		}
	}
	return false
}

// encodeFiles reads each file and base64-encodes it. Decoding happens in
// the pipeline so an unreadable image only affects its own face.
func encodeFiles(paths map[types.Face]string) (map[types.Face]string, error) {
	images := make(map[types.Face]string, len(paths))
	for f, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		images[f] = base64.StdEncoding.EncodeToString(data)
	}
	return images, nil
}

// loadPayload reads a JSON object of base64 images keyed by face letter or
// colour name.
func loadPayload(path string) (map[types.Face]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	images := make(map[types.Face]string, len(raw))
	for k, v := range raw {
		f, ok := faceKey(k)
		if !ok {
			return nil, fmt.Errorf("unknown face %q in %s", k, path)
		}
		images[f] = v
	}
	return images, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
