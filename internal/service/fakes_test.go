package service

import (
	"blogCMS/internal/models"
	"blogCMS/internal/repository"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory users and invites store with the same
// atomicity guarantees as the SQL repositories.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	invites map[string]*models.Invite
	seq     int
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]*models.User{},
		invites: map[string]*models.Invite{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) addUser(user models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.UserID == "" {
		user.UserID = s.nextID("user")
	}
	s.users[user.UserID] = &user
	return &user
}

func (s *memStore) inviteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invites)
}

func (s *memStore) invite(code string) *models.Invite {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.invites {
		if i.Code == code {
			c := *i
			return &c
		}
	}
	return nil
}

type memUsers struct{ *memStore }

type memInvites struct{ *memStore }

func (s memUsers) findByEmail(email string) *models.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s memUsers) CreateUser(ctx context.Context, user *models.User, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(user.Email) != nil {
		return repository.ErrUniqueViolation
	}
	user.UserID = s.nextID("user")
	if user.Role == "" {
		user.Role = models.RoleReader
	}
	c := *user
	s.users[user.UserID] = &c
	return nil
}

func (s memUsers) CreateUserWithInvite(ctx context.Context, user *models.User, password, inviteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	invite, ok := s.invites[inviteID]
	if !ok || invite.Used {
		return repository.ErrInviteUsed
	}
	if s.findByEmail(user.Email) != nil {
		return repository.ErrUniqueViolation
	}
	invite.Used = true
	user.UserID = s.nextID("user")
	c := *user
	s.users[user.UserID] = &c
	return nil
}

func (s memUsers) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s memUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findByEmail(email)
	if u == nil {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findByEmail(email) != nil, nil
}

func (s memUsers) List(ctx context.Context, role string, limit, offset int) ([]*models.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []*models.User
	for _, u := range s.users {
		if role == "" || u.Role == role {
			c := *u
			users = append(users, &c)
		}
	}
	return users, len(users), nil
}

func (s memUsers) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.UserID]; !ok {
		return repository.ErrNotFound
	}
	c := *user
	s.users[user.UserID] = &c
	return nil
}

func (s memUsers) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	return s.GetUserByEmail(ctx, email)
}

func (s memUsers) UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error {
	return nil
}

func (s memUsers) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	return nil, repository.ErrNotFound
}

func (s memInvites) hasActive(email string, now time.Time) bool {
	for _, i := range s.invites {
		if i.Email == email && i.Active(now) {
			return true
		}
	}
	return false
}

func (s memInvites) withInviter(i *models.Invite) *models.Invite {
	c := *i
	if u, ok := s.users[i.InvitedByID]; ok {
		c.InvitedBy = &models.Author{UserID: u.UserID, Name: u.Name, Email: u.Email}
	}
	return &c
}

func (s memInvites) CreateIfNoActive(ctx context.Context, invite *models.Invite, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasActive(invite.Email, now) {
		return repository.ErrActiveInviteExists
	}
	for _, i := range s.invites {
		if i.Code == invite.Code {
			return repository.ErrUniqueViolation
		}
	}
	invite.InviteID = s.nextID("invite")
	c := *invite
	s.invites[invite.InviteID] = &c
	return nil
}

func (s memInvites) HasActive(ctx context.Context, email string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasActive(email, now), nil
}

func (s memInvites) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.invites {
		if i.Code == code {
			return s.withInviter(i), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s memInvites) List(ctx context.Context) ([]*models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invites := []*models.Invite{}
	for _, i := range s.invites {
		invites = append(invites, s.withInviter(i))
	}
	sort.Slice(invites, func(a, b int) bool { return invites[a].CreatedAt.After(invites[b].CreatedAt) })
	return invites, nil
}

func (s memInvites) Delete(ctx context.Context, inviteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invites[inviteID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.invites, inviteID)
	return nil
}

func (s memInvites) Redeem(ctx context.Context, inviteID, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invite, ok := s.invites[inviteID]
	if !ok || invite.Used {
		return nil, repository.ErrInviteUsed
	}
	invite.Used = true
	u := s.users[userID]
	if u.Role == models.RoleReader {
		u.Role = models.RoleAuthor
	}
	c := *u
	return &c, nil
}

// recordingNotifier captures sent codes and can be told to fail.
type recordingNotifier struct {
	mu    sync.Mutex
	fail  error
	sent  []string
	store *memStore
	// seenPersisted records whether the invite existed when the notifier ran
	seenPersisted bool
}

func (n *recordingNotifier) SendInviteEmail(ctx context.Context, to, code, inviterName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.store != nil {
		n.seenPersisted = n.store.invite(code) != nil
	}
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, to)
	return nil
}
