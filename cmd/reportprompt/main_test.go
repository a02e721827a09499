package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"REPORTPROMPT_CONFIG", "MAX_PARAMS", "DATABASE_DRIVER", "DATABASE_URL"} {
		t.Setenv(k, "")
	}
}

func TestRun_Types(t *testing.T) {
	code, out, _ := run(t, "types")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "REMOTE TYPE")
	assert.Regexp(t, `java\.util\.Date\s+date\s+datetime`, out)
	assert.Regexp(t, `java\.sql\.Timestamp\s+datetime\s+datetime`, out)
}

func TestRun_Schema(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: cust
  value_type: java.lang.String
  attributes:
    label: Customer
- name: internal
  value_type: java.lang.String
  attributes:
    hidden: "true"
- name: qty
  value_type: java.lang.Integer
  attributes: {}
  is_mandatory: true
`), 0o600))

	code, out, stderr := run(t, "schema", path)
	require.Equal(t, 0, code, stderr)

	var fs struct {
		Capacity int `json:"capacity"`
		Slots    []struct {
			SlotIndex int    `json:"slot_index"`
			Type      string `json:"canonical_type"`
			Required  bool   `json:"required"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &fs))
	assert.Equal(t, 50, fs.Capacity)
	require.Len(t, fs.Slots, 2)
	assert.Equal(t, "integer", fs.Slots[1].Type)
	assert.True(t, fs.Slots[1].Required)

	code, out, _ = run(t, "schema", "--submission", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "https://json-schema.org/draft/2020-12/schema")

	code, _, stderr = run(t, "schema", "--max-params", "1", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "TOO_MANY_PARAMETERS")
}

func TestRun_Register(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(dir, "reports.db"))

	prpt := filepath.Join(dir, "sales.prpt")
	require.NoError(t, os.WriteFile(prpt, []byte("<prpt/>"), 0o600))

	code, out, stderr := run(t, "register", "--name", "Sales", "report.sales", prpt)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "registered report.sales")

	code, _, stderr = run(t, "register", "--output-type", "docx", "report.sales", prpt)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unsupported output type")
}

func TestRun_Unknown(t *testing.T) {
	code, _, stderr := run(t, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown command")
}
