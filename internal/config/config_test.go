package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-last-sunday/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"PrefSettings", config.PrefSettings},
		{"DefaultName", config.DefaultName},
		{"DefaultInspirationLink", config.DefaultInspirationLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestDefaults_Sanity checks that default values make sense logically.
func TestDefaults_Sanity(t *testing.T) {
	assert.Greater(t, config.DefaultLifeExpectancy, 0, "Default life expectancy must be positive")
	assert.LessOrEqual(t, config.DefaultLifeExpectancy, config.MaxLifeExpectancy)
	assert.Equal(t, time.April, config.DefaultBirthMonth)
	assert.True(t, strings.HasPrefix(config.DefaultInspirationLink, "https://"))
	assert.Equal(t, 3, config.WeekGridColumns, "Year columns are laid out three weeks wide")
}

// TestUserAgent_Format ensures the UA string follows the standard format.
func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Last-Sunday/"), "UserAgent must start with AppName/")
}

func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.HTTPTimeout, 0*time.Second, "HTTPTimeout must be positive")
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute, "HTTPTimeout should not be excessively long")
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second, "ShutdownTimeout must be positive")
	assert.Greater(t, config.MaxHTTPResponseSize, 0, "MaxHTTPResponseSize must be positive")
}

func TestResolvePort(t *testing.T) {
	tests := []struct {
		name                    string
		flag, env, stored, want string
	}{
		{"Flag wins", "9000", "9001", "9002", "9000"},
		{"Env over stored", "", "9001", "9002", "9001"},
		{"Stored", "", "", "9002", "9002"},
		{"Whitespace ignored", " ", "\t", "", config.DefaultPort},
		{"Default", "", "", "", config.DefaultPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, config.ResolvePort(tt.flag, tt.env, tt.stored))
		})
	}
}

func TestLoadOverrides_Environment(t *testing.T) {
	t.Setenv(config.EnvPort, " 18111 ")
	t.Setenv(config.EnvDebug, "true")

	o := config.LoadOverrides()
	assert.Equal(t, "18111", o.Port)
	assert.True(t, o.Debug)
}

func TestLoadOverrides_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(config.EnvPort+"=18222\n"+config.EnvDebug+"=1\n"), config.FilePermUserRW))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// Unset so godotenv is allowed to populate them; t.Setenv restores afterwards.
	t.Setenv(config.EnvPort, "")
	t.Setenv(config.EnvDebug, "")
	require.NoError(t, os.Unsetenv(config.EnvPort))
	require.NoError(t, os.Unsetenv(config.EnvDebug))

	o := config.LoadOverrides()
	assert.Equal(t, "18222", o.Port)
	assert.True(t, o.Debug)
}

func TestLoadOverrides_InvalidDebug(t *testing.T) {
	t.Setenv(config.EnvPort, "")
	t.Setenv(config.EnvDebug, "maybe")

	o := config.LoadOverrides()
	assert.False(t, o.Debug, "Unparseable booleans leave debug off")
}
