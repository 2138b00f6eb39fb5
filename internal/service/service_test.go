package service

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"payhere-integration-demo/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testMerchantID = "1211149"
	testSecret     = "merchant-secret"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Plan{},
		&model.Subscription{},
		&model.APIKey{},
	))

	return db
}

// notifySig computes the digest PayHere would attach to a notification.
func notifySig(secret, orderID, amount, currency, statusCode string) string {
	secretSum := md5.Sum([]byte(secret))
	hashedSecret := strings.ToUpper(hex.EncodeToString(secretSum[:]))
	sum := md5.Sum([]byte(testMerchantID + orderID + amount + currency + statusCode + hashedSecret))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
