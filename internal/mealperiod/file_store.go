package mealperiod

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
)

// PreferenceKey is the key the period is stored under in the preference file.
const PreferenceKey = "sushi-pos-meal-period"

// FileStore keeps the period in a small JSON key-value file, the local
// preference an operator's terminal remembers between runs. Other keys in
// the file are preserved.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPreferencePath is $XDG_CONFIG_HOME/sushi-pos/preferences.json or the
// platform equivalent.
func DefaultPreferencePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sushi-pos", "preferences.json"), nil
}

func (s *FileStore) read() (map[string]string, error) {
	prefs := map[string]string{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return prefs, nil
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return prefs, nil
}

func (s *FileStore) Load(context.Context) (models.MealPeriod, error) {
	prefs, err := s.read()
	if err != nil {
		return "", err
	}
	p, ok := models.ParseMealPeriod(prefs[PreferenceKey])
	if !ok || !p.IsServicePeriod() {
		return "", nil
	}
	return p, nil
}

func (s *FileStore) Save(_ context.Context, p models.MealPeriod) error {
	prefs, err := s.read()
	if err != nil {
		return err
	}
	prefs[PreferenceKey] = strings.ToLower(string(p))

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
