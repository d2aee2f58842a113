package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONB(t *testing.T) {
	type entity struct {
		Name   string   `json:"name"`
		Emails []string `json:"emails"`
	}

	value, err := NewJSONB([]entity{{Name: "Jane", Emails: []string{"j@x.com"}}}).Value()
	require.NoError(t, err)

	var scanned JSONB[[]entity]
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, "Jane", scanned.Data[0].Name)

	require.NoError(t, scanned.Scan(`[{"name":"John"}]`))
	assert.Equal(t, "John", scanned.Data[0].Name)

	var empty JSONB[[]entity]
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty.Data)

	assert.Error(t, empty.Scan(42))
}

func TestConfigDSN(t *testing.T) {
	config := Config{Host: "localhost", Port: 5432, User: "fern", Password: "secret", Name: "fern"}
	assert.Equal(t, "host=localhost port=5432 user=fern password=secret dbname=fern sslmode=disable", config.DSN())

	config.SSLMode = "require"
	assert.Contains(t, config.DSN(), "sslmode=require")
}

func TestGetLatestVersion(t *testing.T) {
	version, err := getLatestVersion("../../db/pg")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, version, 1)

	_, err = getLatestVersion(t.TempDir())
	assert.Error(t, err)
}
