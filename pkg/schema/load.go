package schema

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Load reads a schema document from path. The format follows the file
// extension in any case (json, yaml, yml, toml); any other path is read as
// JSON. The returned schema has been validated.
func Load(path string) (*Schema, error) {
	v := viper.New()
	v.SetConfigFile(path)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if slices.Contains(viper.SupportedExts, ext) {
		v.SetConfigType(ext)
	} else {
		v.SetConfigType("json")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	return decode(v, path)
}

// Parse decodes a schema document held in memory. format is a viper config
// type such as "json" or "yaml".
func Parse(data []byte, format string) (*Schema, error) {
	if format == "" {
		format = "json"
	}

	v := viper.New()
	v.SetConfigType(strings.ToLower(format))
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, &LoadError{Err: err}
	}

	return decode(v, "")
}

func decode(v *viper.Viper, path string) (*Schema, error) {
	var s Schema
	if err := v.Unmarshal(&s); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	if err := s.Validate(); err != nil {
		if le, ok := err.(*LoadError); ok {
			le.Path = path
		}
		return nil, err
	}

	return &s, nil
}
