package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"spacebudget/internal/config"
	"spacebudget/internal/models"
	"spacebudget/internal/testutil"
)

var kst = config.FixedZone(9)

// env is a migrated database with one space owned by owner.
type env struct {
	ctx    context.Context
	db     *gorm.DB
	spaces *spaceService
	owner  string
	space  *models.Space
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	owner := testutil.NewUserID()
	return &env{
		ctx:    context.Background(),
		db:     db,
		spaces: NewSpaceService(db).(*spaceService),
		owner:  owner,
		space:  testutil.CreateTestSpace(t, db, owner),
	}
}

// at returns an instant given as wall-clock time in KST.
func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, kst)
}
