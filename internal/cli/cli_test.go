package cli

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFaceKey(t *testing.T) {
	tests := []struct {
		in   string
		want types.Face
		ok   bool
	}{
		{"U", types.FaceU, true},
		{"r", types.FaceR, true},
		{"green", types.FaceF, true},
		{"Yellow", types.FaceD, true},
		{"purple", "", false},
		{"X", "", false},
	}
	for _, tt := range tests {
		got, ok := faceKey(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("faceKey(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFaceImagePaths(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "white.png")
	touch(t, dir, "R.jpg")
	touch(t, dir, "green.txt")
	touch(t, dir, "notes.png")
	if err := os.Mkdir(filepath.Join(dir, "blue.png"), 0755); err != nil {
		t.Fatal(err)
	}

	paths, err := faceImagePaths(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %v, want U and R only", paths)
	}
	if filepath.Base(paths[types.FaceU]) != "white.png" {
		t.Errorf("U = %s", paths[types.FaceU])
	}
	if filepath.Base(paths[types.FaceR]) != "R.jpg" {
		t.Errorf("R = %s", paths[types.FaceR])
	}

	missing := missingFaces(paths)
	if len(missing) != 4 || missing[0] != "F" {
		t.Errorf("missing = %v", missing)
	}
}

func TestEncodeFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "U.png")

	images, err := encodeFiles(map[types.Face]string{types.FaceU: filepath.Join(dir, "U.png")})
	if err != nil {
		t.Fatal(err)
	}
	if images[types.FaceU] != base64.StdEncoding.EncodeToString([]byte("x")) {
		t.Errorf("encoded = %q", images[types.FaceU])
	}

	_, err = encodeFiles(map[types.Face]string{types.FaceU: filepath.Join(dir, "missing.png")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want not-exist error", err)
	}
}

func TestLoadPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	if err := os.WriteFile(path, []byte(`{"U":"aaa","orange":"bbb"}`), 0644); err != nil {
		t.Fatal(err)
	}
	images, err := loadPayload(path)
	if err != nil {
		t.Fatal(err)
	}
	if images[types.FaceU] != "aaa" || images[types.FaceL] != "bbb" {
		t.Errorf("images = %v", images)
	}

	if err := os.WriteFile(path, []byte(`{"Q":"aaa"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadPayload(path); err == nil {
		t.Error("expected error for unknown face key")
	}
}

func TestFaceImageEvent(t *testing.T) {
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/cap/white.png", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/cap/F.jpeg", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/cap/white.png", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "/cap/white.png", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/cap/white.png.tmp", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/cap/cat.png", Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		if got := faceImageEvent(tt.ev); got != tt.want {
			t.Errorf("faceImageEvent(%v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEditModel(t *testing.T) {
	var saved types.CubeState
	m := newEditModel(types.CubeState{
		types.FaceU: {types.White, types.White},
	}, func(st types.CubeState) error {
		saved = st
		return nil
	})

	// Short and missing faces are padded.
	if len(m.state) != 6 || m.state[types.FaceU][2] != types.Unknown {
		t.Fatalf("state not padded: %v", m.state)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor.Index != 4 {
		t.Errorf("cursor index = %d, want 4", m.cursor.Index)
	}
	m.Update(keyRunes("r"))
	if m.state[types.FaceU][4] != types.Red || !m.dirty {
		t.Errorf("sticker = %s, dirty %v", m.state[types.FaceU][4], m.dirty)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor.Index != 7 {
		t.Errorf("cursor should wrap, index = %d", m.cursor.Index)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.cursor.Face != types.FaceR {
		t.Errorf("face = %s, want R", m.cursor.Face)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.cursor.Face != types.FaceB {
		t.Errorf("face = %s, want B", m.cursor.Face)
	}

	m.Update(keyRunes("s"))
	if !m.saved || m.dirty {
		t.Error("expected saved state")
	}
	if saved[types.FaceU][4] != types.Red {
		t.Errorf("saved sticker = %s", saved[types.FaceU][4])
	}

	if _, cmd := m.Update(keyRunes("q")); cmd == nil {
		t.Error("q should quit")
	}
	if m.View() == "" {
		t.Error("empty view")
	}
}
