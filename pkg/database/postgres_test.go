package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDSNOmitsGoLocalTimeZone(t *testing.T) {
	base := Options{Host: "localhost", User: "postgres", Password: "pw", Name: "ali_plastic", Port: "5432"}

	for _, tz := range []string{"", "Local", "local"} {
		opts := base
		opts.TimeZone = tz
		dsn := opts.dsn()
		require.Equal(t, "host=localhost user=postgres password=pw dbname=ali_plastic port=5432 sslmode=disable", dsn)
		require.NotContains(t, dsn, "TimeZone")
	}
}

func TestDSNKeepsNamedTimeZone(t *testing.T) {
	opts := Options{Host: "db", User: "pos", Name: "pos", Port: "5432", TimeZone: "Asia/Karachi"}

	require.Contains(t, opts.dsn(), " TimeZone=Asia/Karachi")
}

func TestDSNPrefersURL(t *testing.T) {
	opts := Options{DSN: "postgres://pos@db/pos", Host: "ignored", TimeZone: "Local"}

	require.Equal(t, "postgres://pos@db/pos", opts.dsn())
}
