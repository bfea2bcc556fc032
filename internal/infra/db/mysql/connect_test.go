package mysql

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN_ForcesParseTimeAndUTC(t *testing.T) {
	tests := []string{
		"loglens:secret@tcp(db:3306)/loglens",
		"loglens:secret@tcp(db:3306)/loglens?parseTime=false&loc=Local",
		"loglens:secret@tcp(db:3306)/loglens?autocommit=1",
	}
	for _, dsn := range tests {
		t.Run(dsn, func(t *testing.T) {
			out, err := normalizeDSN(dsn)
			require.NoError(t, err)

			cfg, err := mysql.ParseDSN(out)
			require.NoError(t, err)
			assert.True(t, cfg.ParseTime)
			assert.Equal(t, time.UTC, cfg.Loc)
			assert.Equal(t, "db:3306", cfg.Addr)
			assert.Equal(t, "loglens", cfg.DBName)
		})
	}
}

func TestNormalizeDSN_KeepsParams(t *testing.T) {
	out, err := normalizeDSN("u:p@tcp(db:3306)/loglens?autocommit=1")
	require.NoError(t, err)

	cfg, err := mysql.ParseDSN(out)
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Params["autocommit"])
}

func TestNormalizeDSN_Invalid(t *testing.T) {
	_, err := normalizeDSN("not a dsn")
	assert.Error(t, err)
}
