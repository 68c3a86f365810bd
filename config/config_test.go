package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ALLOWED_EMAIL_DOMAIN", "")
	t.Setenv("PROFILE_CACHE_TTL", "")

	cfg := Load()

	assert.Equal(t, "ncsu.edu", cfg.AllowedEmailDomain)
	assert.Equal(t, "default.png", cfg.DefaultProfilePhoto)
	assert.Equal(t, 10*time.Minute, cfg.ProfileCacheTTL)
	assert.Equal(t, "profiles", cfg.ESProfilesIndex)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ALLOWED_EMAIL_DOMAIN", "example.edu")
	t.Setenv("PROFILE_CACHE_TTL", "30s")
	t.Setenv("MAIL_SEND_ENABLED", "not-a-bool")
	t.Setenv("DB_MAX_CONNS", "25")

	cfg := Load()

	assert.Equal(t, "example.edu", cfg.AllowedEmailDomain)
	assert.Equal(t, 30*time.Second, cfg.ProfileCacheTTL)
	assert.True(t, cfg.MailSendEnabled, "invalid booleans fall back to the default")
	assert.EqualValues(t, 25, cfg.DBMaxConns)
}

func TestSplitLists(t *testing.T) {
	cfg := &Config{
		CORSAllowedOrigins: " http://a.test , ,http://b.test",
		ElasticsearchAddrs: "http://es:9200",
	}

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Equal(t, []string{"http://es:9200"}, cfg.ESAddrs())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "roommates", DBSSLMode: "disable"}

	assert.Equal(t, "postgres://u:p@h:5432/roommates?sslmode=disable", cfg.PostgresDSN())
}
