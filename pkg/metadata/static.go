package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// StaticSource serves a fixed record list regardless of the request.
type StaticSource struct {
	Records []report.RawParamRecord
	Err     error
}

func (s *StaticSource) ParameterInfo(context.Context, Request) ([]report.RawParamRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Records, nil
}

// LoadFile reads a JSON or YAML record list into a StaticSource.
func LoadFile(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load parameter file %q: %w", path, err)
	}
	var records []report.RawParamRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &records)
	default:
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("parse parameter file %q: %w", path, err)
	}
	return &StaticSource{Records: records}, nil
}
