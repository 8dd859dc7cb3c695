package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/practice/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DOCSTORE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("READMODEL_TTL", "")
	t.Setenv("NEXT_BILL_STATUS", "")
	t.Setenv("PRACTICE_USER_ROLE", "")

	cfg, err := Load("", "", "false")
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.DocStoreDriver)
	assert.Equal(t, "./practice.db", cfg.DatabaseURL)
	assert.Equal(t, "sqlite3", cfg.ActivityDriver)
	assert.Equal(t, cfg.DatabaseURL, cfg.ActivityURL)
	assert.Equal(t, 5*time.Minute, cfg.ReadModelTTL)
	assert.Equal(t, string(models.BillStatusPendingCollection), cfg.NextBillStatus)
	assert.False(t, cfg.DevMode)
	assert.NoError(t, cfg.Validate())
}

func TestLoadArgumentsOverrideEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "env.db")
	cfg, err := Load("flag.db", "libsql", "")
	require.NoError(t, err)
	assert.Equal(t, "flag.db", cfg.DatabaseURL)
	assert.Equal(t, "libsql", cfg.DocStoreDriver)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DocStoreDriver: "sqlite3",
			ActivityDriver: "sqlite3",
			UserRole:       "accounts",
			NextBillStatus: "Pending Collection",
			LogFormat:      "console",
		}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.DocStoreDriver = "mongo"
	assert.Error(t, c.Validate())

	c = base()
	c.DocStoreDriver = "firestore"
	assert.Error(t, c.Validate())
	c.FirestoreProject = "practice-prod"
	assert.NoError(t, c.Validate())

	c = base()
	c.UserRole = "intern"
	assert.Error(t, c.Validate())

	c = base()
	c.NextBillStatus = "To Bill"
	assert.Error(t, c.Validate())

	c = base()
	c.NextBillStatus = "collected"
	assert.NoError(t, c.Validate())
}

func TestActor(t *testing.T) {
	c := &Config{UserID: "e1", UserName: "Asha", UserRole: "Partner"}
	assert.Equal(t, models.Actor{UserID: "e1", UserName: "Asha", Role: models.RolePartner}, c.Actor())

	c.UserRole = "bogus"
	assert.Equal(t, models.RoleStaff, c.Actor().Role)
}
