package repository

import (
	"context"

	domainRepo "identity-gateway/domain/repository"

	"gorm.io/gorm"
)

type txKey struct{}

// transactor 基于 GORM 的事务实现，事务句柄通过 context 传递给各仓库
type transactor struct {
	db *gorm.DB
}

// NewTransactor 构造函数
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &transactor{db: db}
}

// WithinTransaction 在一个数据库事务中执行 fn
// 已经处于事务中时直接复用，不开启嵌套事务
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return translate(err)
}

// conn 返回当前 context 对应的连接（事务内返回事务句柄）
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
