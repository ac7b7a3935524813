package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with the GORM transaction it runs under.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}
