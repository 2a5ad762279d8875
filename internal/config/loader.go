package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Set is every data file the battle core reads.
type Set struct {
	Roster        *RosterConfig
	Synergies     *SynergiesConfig
	Terrain       *TerrainConfig
	Personalities *PersonalitiesConfig
	Equipment     *EquipmentConfig
}

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

// loadOptional decodes path into out, leaving out untouched when the file
// does not exist.
func loadOptional(path string, out any) (bool, error) {
	if err := loadYAML(path, out); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// LoadAll reads the data files under dir. Missing files fall back to the
// built-in defaults; malformed files are an error.
func LoadAll(dir string) (*Set, error) {
	set := Defaults()

	var rc RosterConfig
	if ok, err := loadOptional(filepath.Join(dir, "roster.yaml"), &rc); err != nil {
		return nil, err
	} else if ok {
		set.Roster = &rc
	}
	var sc SynergiesConfig
	if ok, err := loadOptional(filepath.Join(dir, "synergies.yaml"), &sc); err != nil {
		return nil, err
	} else if ok {
		set.Synergies = &sc
	}
	var tc TerrainConfig
	if ok, err := loadOptional(filepath.Join(dir, "terrain.yaml"), &tc); err != nil {
		return nil, err
	} else if ok {
		set.Terrain = &tc
	}
	var pc PersonalitiesConfig
	if ok, err := loadOptional(filepath.Join(dir, "personalities.yaml"), &pc); err != nil {
		return nil, err
	} else if ok {
		set.Personalities = &pc
	}
	var ec EquipmentConfig
	if ok, err := loadOptional(filepath.Join(dir, "equipment.yaml"), &ec); err != nil {
		return nil, err
	} else if ok {
		set.Equipment = &ec
	}
	return set, nil
}

// Defaults is the data the game ships with.
func Defaults() *Set {
	return &Set{
		Roster:        DefaultRoster(),
		Synergies:     DefaultSynergies(),
		Terrain:       DefaultTerrain(),
		Personalities: DefaultPersonalities(),
		Equipment:     DefaultEquipment(),
	}
}
