package repository

import "context"

// Transactor 事务边界
// fn 内通过 ctx 调用的所有仓库方法共享同一个事务，fn 返回错误则整体回滚
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
