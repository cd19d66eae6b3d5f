package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	domainErrors "identity-gateway/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// translate 把 GORM / pgx 错误映射为领域错误
// 需要 gorm.Config{TranslateError: true}
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domainErrors.ErrTransient),
		errors.Is(err, domainErrors.ErrDuplicateKey),
		errors.Is(err, domainErrors.ErrReferenceNotFound):
		// 已经翻译过（事务回调里返回的错误）
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domainErrors.ErrDuplicateKey, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", domainErrors.ErrReferenceNotFound, err)
	case isTransient(err):
		return fmt.Errorf("%w: %v", domainErrors.ErrTransient, err)
	default:
		return err
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	return pgconn.Timeout(err) || pgconn.SafeToRetry(err)
}
