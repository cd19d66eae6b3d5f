package identity

import (
	"context"
	"fmt"

	"identity-gateway/domain/entity"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
)

// DefaultPageSize Clerk 列表接口单页上限
const DefaultPageSize = 100

// ClerkSource 通过 Clerk Backend API 拉取全量用户（手动同步路径）
// 调用前需要 clerk.SetKey
type ClerkSource struct {
	pageSize int64
	list     func(ctx context.Context, params *user.ListParams) (*clerk.UserList, error)
}

// NewClerkSource 构造函数
func NewClerkSource(pageSize int64) *ClerkSource {
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}
	return &ClerkSource{pageSize: pageSize, list: user.List}
}

// ListUsers 分页拉取所有用户并转换为快照
func (s *ClerkSource) ListUsers(ctx context.Context) ([]entity.UserSnapshot, error) {
	var snapshots []entity.UserSnapshot
	var offset int64

	for {
		params := &user.ListParams{}
		params.Limit = clerk.Int64(s.pageSize)
		params.Offset = clerk.Int64(offset)

		page, err := s.list(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("list clerk users (offset %d): %w", offset, err)
		}

		for _, u := range page.Users {
			if u == nil {
				continue
			}
			snapshots = append(snapshots, SnapshotFromClerkUser(u))
		}

		offset += int64(len(page.Users))
		if len(page.Users) == 0 || int64(len(page.Users)) < s.pageSize || offset >= page.TotalCount {
			return snapshots, nil
		}
	}
}
