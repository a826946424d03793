package memory

import (
	"context"
	"sync"
	"time"

	authDomain "token-auth/internal/domain/auth"
)

// Store 為程序內的記憶體儲存，提供使用者與 refresh token 的存取，併發安全。
// 重啟後資料即消失。
type Store struct {
	mu      sync.RWMutex
	users   map[string]authDomain.User
	byEmail map[string]string
	// user id -> 最近一次簽發的 refresh token
	refresh map[string]authDomain.RefreshRecord
}

// NewStore 建立新的記憶體 Store 實例。
func NewStore() *Store {
	return &Store{
		users:   make(map[string]authDomain.User),
		byEmail: make(map[string]string),
		refresh: make(map[string]authDomain.RefreshRecord),
	}
}

// UserRepository impl
// Save 新增或更新使用者，保留原有的 CreatedAt。
func (s *Store) Save(ctx context.Context, user authDomain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.users[user.ID]; ok {
		if !prev.CreatedAt.IsZero() {
			user.CreatedAt = prev.CreatedAt
		}
		if prev.Email != user.Email {
			delete(s.byEmail, prev.Email)
		}
	}
	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return nil
}

// FindByID 依 ID 查詢使用者。
func (s *Store) FindByID(ctx context.Context, id string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return authDomain.User{}, authDomain.ErrUserNotFound
	}
	return u, nil
}

// FindByEmail 依 email 查詢使用者。
func (s *Store) FindByEmail(ctx context.Context, email string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return authDomain.User{}, authDomain.ErrUserNotFound
	}
	return s.users[id], nil
}

// RefreshStore impl
// SaveRefresh 覆蓋該使用者的 refresh token 紀錄。
func (s *Store) SaveRefresh(ctx context.Context, rec authDomain.RefreshRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[rec.UserID] = rec
	return nil
}

func (s *Store) GetRefresh(ctx context.Context, userID string) (authDomain.RefreshRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.refresh[userID]
	if !ok {
		return authDomain.RefreshRecord{}, authDomain.ErrRefreshNotFound
	}
	return rec, nil
}

func (s *Store) DeleteRefresh(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, userID)
	return nil
}

// PurgeExpired 刪除所有已過期的 refresh token 並回傳筆數。
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, rec := range s.refresh {
		if !rec.Active(now) {
			delete(s.refresh, id)
			n++
		}
	}
	return n, nil
}

// RefreshStore 回傳符合 authDomain.RefreshStore 的轉接器。
func (s *Store) RefreshStore() authDomain.RefreshStore {
	return refreshAdapter{store: s}
}

// refreshAdapter 讓 Store 同時滿足 UserRepository 與 RefreshStore（兩者都有 Save）。
type refreshAdapter struct {
	store *Store
}

func (a refreshAdapter) Save(ctx context.Context, rec authDomain.RefreshRecord) error {
	return a.store.SaveRefresh(ctx, rec)
}

func (a refreshAdapter) Get(ctx context.Context, userID string) (authDomain.RefreshRecord, error) {
	return a.store.GetRefresh(ctx, userID)
}

func (a refreshAdapter) Delete(ctx context.Context, userID string) error {
	return a.store.DeleteRefresh(ctx, userID)
}

func (a refreshAdapter) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	return a.store.PurgeExpired(ctx, now)
}

// Count 回傳目前保存的 refresh token 數量。
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.refresh)
}
