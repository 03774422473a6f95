package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for the YAML overlay. Pointer fields distinguish
// "not set" from zero values.
type fileConfig struct {
	Server struct {
		Port *int    `yaml:"port"`
		Host *string `yaml:"host"`
	} `yaml:"server"`
	Bank struct {
		Path    *string `yaml:"path"`
		Sheet   *string `yaml:"sheet"`
		DataDir *string `yaml:"data_dir"`
	} `yaml:"bank"`
	State struct {
		Backend *string `yaml:"backend"`
		Dir     *string `yaml:"dir"`
	} `yaml:"state"`
	Database struct {
		URL      *string `yaml:"url"`
		MaxConns *int    `yaml:"max_conns"`
		MinConns *int    `yaml:"min_conns"`
	} `yaml:"database"`
	Cache struct {
		URL *string `yaml:"url"`
	} `yaml:"cache"`
	Sizes struct {
		Quiz        *int `yaml:"quiz"`
		Batch       *int `yaml:"batch"`
		SprintBatch *int `yaml:"sprint_batch"`
		SprintCount *int `yaml:"sprint_count"`
	} `yaml:"sizes"`
	Log struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"log"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	setInt(&cfg.Server.Port, fc.Server.Port)
	setStr(&cfg.Server.Host, fc.Server.Host)
	setStr(&cfg.Bank.Path, fc.Bank.Path)
	setStr(&cfg.Bank.Sheet, fc.Bank.Sheet)
	setStr(&cfg.Bank.DataDir, fc.Bank.DataDir)
	setStr(&cfg.State.Backend, fc.State.Backend)
	setStr(&cfg.State.Dir, fc.State.Dir)
	setStr(&cfg.Database.URL, fc.Database.URL)
	setInt(&cfg.Database.MaxConns, fc.Database.MaxConns)
	setInt(&cfg.Database.MinConns, fc.Database.MinConns)
	setStr(&cfg.Cache.URL, fc.Cache.URL)
	setInt(&cfg.Sizes.Quiz, fc.Sizes.Quiz)
	setInt(&cfg.Sizes.Batch, fc.Sizes.Batch)
	setInt(&cfg.Sizes.SprintBatch, fc.Sizes.SprintBatch)
	setInt(&cfg.Sizes.SprintCount, fc.Sizes.SprintCount)
	setStr(&cfg.Log.Level, fc.Log.Level)
	setStr(&cfg.Log.Format, fc.Log.Format)

	return nil
}

func setStr(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
