package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// State то, что клиент помнит между запусками
type State struct {
	DeviceID   string
	DeviceName string
	AuthToken  string
	LastSyncAt string
}

func (s State) Paired() bool {
	return s.AuthToken != ""
}

// LoadState читает YAML-файл состояния. Отсутствующий файл дает пустое состояние
// с новым device_id.
func LoadState(path string) (*State, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read state: %w", err)
			}
		}
	}

	s := &State{
		DeviceID:   v.GetString("device_id"),
		DeviceName: v.GetString("device_name"),
		AuthToken:  v.GetString("auth_token"),
		LastSyncAt: v.GetString("last_sync_at"),
	}
	if s.DeviceID == "" {
		s.DeviceID = uuid.NewString()
	}
	return s, nil
}

// Save пишет состояние атомарно: временный файл и rename
func (s *State) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("device_id", s.DeviceID)
	v.Set("device_name", s.DeviceName)
	v.Set("auth_token", s.AuthToken)
	v.Set("last_sync_at", s.LastSyncAt)
	v.Set("saved_at", time.Now().UTC().Format(time.RFC3339))

	tmp := path + ".tmp.yaml"
	if err := v.WriteConfigAs(tmp); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Chmod(tmp, 0o600); err != nil {
		return fmt.Errorf("chmod state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
