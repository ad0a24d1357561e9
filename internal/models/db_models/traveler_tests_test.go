package db_models

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserTravelerTestGuardsSingleActiveTestPerUser(t *testing.T) {
	field, ok := reflect.TypeOf(UserTravelerTest{}).FieldByName("UserID")
	require.True(t, ok)

	tag := field.Tag.Get("gorm")
	assert.Contains(t, tag, "uniqueIndex:idx_active_test_per_user")
	assert.Contains(t, tag, "where:completed_at IS NULL AND deleted_at IS NULL")
}
