// Package migrations содержит SQL-схему хранилища для каждого поддерживаемого драйвера.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// For возвращает каталог миграций для драйвера ("sqlite" или "postgres")
func For(driver string) (fs.FS, error) {
	switch driver {
	case "sqlite", "postgres":
		return fs.Sub(files, driver)
	}
	return nil, fmt.Errorf("no migrations for driver %q", driver)
}
