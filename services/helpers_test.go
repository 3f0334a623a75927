package services

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/models"
)

var errInjected = errors.New("injected failure")

func actorOf(u models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&count).Error)
	return count
}

// failOn makes every statement of kind ("create" or "delete") against table fail
func failOn(t *testing.T, db *gorm.DB, kind, table string) {
	t.Helper()

	fail := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errInjected)
		}
	}
	name := "test:fail_" + kind + "_" + table

	var err error
	switch kind {
	case "create":
		err = db.Callback().Create().Before("gorm:create").Register(name, fail)
	case "delete":
		err = db.Callback().Delete().Before("gorm:delete").Register(name, fail)
	default:
		t.Fatalf("unknown statement kind %q", kind)
	}
	require.NoError(t, err)
}

func dataURI(mime string, content []byte) *string {
	s := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(content)
	return &s
}

func ptr[T any](v T) *T {
	return &v
}
