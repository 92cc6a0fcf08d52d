package settings

import (
	"context"
	"encoding/json"

	"lendcore/core"

	"github.com/fox-one/pkg/property"
)

const stakedSettingsKey = "staked_settings"

type settingsStore struct {
	properties property.Store
}

// New staked settings kept in the property store
func New(properties property.Store) core.IStakedSettingsStore {
	return &settingsStore{properties: properties}
}

func (s *settingsStore) Get(ctx context.Context) (*core.StakedSettings, error) {
	v, err := s.properties.Get(ctx, stakedSettingsKey)
	if err != nil {
		return nil, err
	}

	data := v.String()
	if data == "" {
		return nil, nil
	}

	var settings core.StakedSettings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

func (s *settingsStore) Save(ctx context.Context, settings *core.StakedSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	return s.properties.Save(ctx, stakedSettingsKey, string(data))
}
