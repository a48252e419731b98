package storage

import (
	"fmt"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/service"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
)

// Open returns the storage for driver at path. Call Migrate before use.
func Open(driver, path string) (service.Storage, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLiteStorage(path)
	case DriverJSON:
		return NewJSONStorage(path)
	default:
		return nil, fmt.Errorf("%w: storage driver %q (want %s or %s)",
			common.ErrInvalidConfig, driver, DriverSQLite, DriverJSON)
	}
}
