package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresConfigTranslatesDriverErrors(t *testing.T) {
	// Repositories match duplicate keys with errors.Is(err, gorm.ErrDuplicatedKey);
	// without translation the driver returns raw SQLSTATE errors and the
	// conflict mapping never fires.
	assert.True(t, postgresConfig().TranslateError)
}
