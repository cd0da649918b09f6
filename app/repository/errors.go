package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrTenantRequired is returned when a tenant-scoped operation is attempted
// without a tenant reference. This is a caller bug; fail fast.
var ErrTenantRequired = errors.New("repository: tenant reference is required")

// IsDuplicateKey reports whether err is a uniqueness violation. Duplicates are
// expected under concurrent fitment generation and count as skipped, not
// failed.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	// sqlite (tests) and other drivers
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
