package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"identity-gateway/domain/entity"
	domainErrors "identity-gateway/domain/errors"
)

// ========== 内存版 Store ==========
// 同时实现 Transactor / InvitationRepository / UserRepository / WebhookEventRepository
// 事务之间可以并发交错执行，不加全局锁：原子性只来自单个方法在 mu 下的条件读写
// （IncrementUses / BindUser 相当于带 WHERE 条件的 UPDATE）
// 回滚通过每个事务自己的 undo 日志做补偿，不覆盖其他事务已提交的修改

type fakeTxKey struct{}

// fakeTx 单个事务的 undo 日志，只在事务所在的 goroutine 内追加
type fakeTx struct {
	undo []func()
}

type fakeStore struct {
	mu sync.Mutex // 保护下面的数据

	users       map[string]entity.User
	invitations map[string]entity.Invitation // key: id
	journal     map[string]entity.WebhookEvent

	failures map[string][]error // 按方法名注入的错误，依次弹出
	calls    map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]entity.User),
		invitations: make(map[string]entity.Invitation),
		journal:     make(map[string]entity.WebhookEvent),
		failures:    make(map[string][]error),
		calls:       make(map[string]int),
	}
}

// failNext 让 method 接下来的调用依次返回 errs
func (s *fakeStore) failNext(method string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], errs...)
}

func (s *fakeStore) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// enter 记录调用并弹出注入的错误；调用方需持有 s.mu
func (s *fakeStore) enter(method string) error {
	s.calls[method]++
	if errs := s.failures[method]; len(errs) > 0 {
		s.failures[method] = errs[1:]
		return errs[0]
	}
	return nil
}

// ---------- Transactor ----------

func (s *fakeStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	tx := &fakeTx{}
	if err := fn(context.WithValue(ctx, fakeTxKey{}, tx)); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// onRollback 登记补偿操作；不在事务内时直接生效，无需登记。调用方需持有 s.mu
func onRollback(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(fakeTxKey{}).(*fakeTx); ok {
		tx.undo = append(tx.undo, undo)
	}
}

// ---------- UserRepository ----------

func (s *fakeStore) Upsert(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Upsert"); err != nil {
		return err
	}
	now := time.Now()
	stored, ok := s.users[user.ID]
	id, prev := user.ID, stored
	onRollback(ctx, func() {
		if !ok {
			delete(s.users, id)
			return
		}
		// 只恢复身份字段，invitation_id 归兑换流程所有
		prev.InvitationID = s.users[id].InvitationID
		s.users[id] = prev
	})
	if !ok {
		stored = entity.User{ID: user.ID, CreatedAt: now}
	}
	// 整体覆盖身份字段，保留 invitation_id
	stored.Email = user.Email
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.ImageURL = user.ImageURL
	stored.LastSignInAt = user.LastSignInAt
	stored.SourceUpdatedAt = user.SourceUpdatedAt
	stored.UpdatedAt = now
	s.users[user.ID] = stored
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, userID string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetByID"); err != nil {
		return nil, err
	}
	user, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *fakeStore) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetByEmail"); err != nil {
		return nil, err
	}
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Delete(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Delete"); err != nil {
		return false, err
	}
	prev, ok := s.users[userID]
	if ok {
		onRollback(ctx, func() { s.users[userID] = prev })
	}
	delete(s.users, userID)
	return ok, nil
}

func (s *fakeStore) List(_ context.Context) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("List"); err != nil {
		return nil, err
	}
	users := make([]entity.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *fakeStore) ListByIDs(_ context.Context, ids []string) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListByIDs"); err != nil {
		return nil, err
	}
	var users []entity.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

// ---------- InvitationRepository ----------

// invitationStore 避免与 UserRepository 的方法名冲突（List / GetByID）
type invitationStore struct{ *fakeStore }

func (s invitationStore) Create(ctx context.Context, inv *entity.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateInvitation"); err != nil {
		return err
	}
	for _, existing := range s.invitations {
		if existing.Code == inv.Code {
			return domainErrors.ErrDuplicateKey
		}
	}
	if inv.CreatedByID != nil {
		if _, ok := s.users[*inv.CreatedByID]; !ok {
			return domainErrors.ErrReferenceNotFound
		}
	}
	id := inv.ID
	onRollback(ctx, func() { delete(s.invitations, id) })
	s.invitations[inv.ID] = *inv
	return nil
}

func (s invitationStore) GetByCode(_ context.Context, code string) (*entity.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetByCode"); err != nil {
		return nil, err
	}
	return s.byCode(code), nil
}

func (s invitationStore) GetByCodeWithUsers(_ context.Context, code string) (*entity.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetByCodeWithUsers"); err != nil {
		return nil, err
	}
	inv := s.byCode(code)
	if inv != nil {
		inv.UsedBy = s.usersOf(inv.ID)
	}
	return inv, nil
}

func (s invitationStore) List(_ context.Context) ([]entity.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListInvitations"); err != nil {
		return nil, err
	}
	out := make([]entity.Invitation, 0, len(s.invitations))
	for _, inv := range s.invitations {
		inv.UsedBy = s.usersOf(inv.ID)
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s invitationStore) IncrementUses(ctx context.Context, invitationID string, now time.Time) (*entity.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("IncrementUses"); err != nil {
		return nil, err
	}
	inv, ok := s.invitations[invitationID]
	if !ok || inv.UsesCount >= inv.MaxUses || inv.IsExpired(now) {
		return nil, nil
	}
	inv.UsesCount++
	s.invitations[invitationID] = inv
	onRollback(ctx, func() {
		if cur, ok := s.invitations[invitationID]; ok {
			cur.UsesCount--
			s.invitations[invitationID] = cur
		}
	})
	return &inv, nil
}

func (s invitationStore) BindUser(ctx context.Context, userID, invitationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("BindUser"); err != nil {
		return false, err
	}
	user, ok := s.users[userID]
	if !ok || user.InvitationID != nil {
		return false, nil
	}
	id := invitationID
	user.InvitationID = &id
	s.users[userID] = user
	onRollback(ctx, func() {
		if cur, ok := s.users[userID]; ok {
			cur.InvitationID = nil
			s.users[userID] = cur
		}
	})
	return true, nil
}

func (s *fakeStore) byCode(code string) *entity.Invitation {
	for _, inv := range s.invitations {
		if inv.Code == code {
			found := inv
			return &found
		}
	}
	return nil
}

func (s *fakeStore) usersOf(invitationID string) []entity.User {
	var users []entity.User
	for _, u := range s.users {
		if u.InvitationID != nil && *u.InvitationID == invitationID {
			users = append(users, u)
		}
	}
	return users
}

// ---------- WebhookEventRepository ----------

type journalStore struct{ *fakeStore }

func (s journalStore) Record(ctx context.Context, event *entity.WebhookEvent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Record"); err != nil {
		return false, err
	}
	if _, ok := s.journal[event.ID]; ok {
		return false, nil
	}
	s.journal[event.ID] = *event
	eventID := event.ID
	onRollback(ctx, func() { delete(s.journal, eventID) })
	return true, nil
}

// ---------- 便捷方法 ----------

func (s *fakeStore) putUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *fakeStore) user(id string) (entity.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *fakeStore) invitation(code string) *entity.Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byCode(code)
}
