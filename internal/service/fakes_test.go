package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"menteam-auth/internal/model"
	"menteam-auth/internal/repository"
	"menteam-auth/internal/slack"
)

var errInjected = errors.New("injected failure")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory repository.Store. WithTx snapshots every table and
// puts the snapshot back when fn fails.
type memStore struct {
	users     map[string]model.User
	roles     map[int64]model.Role
	userRoles map[string]map[int64]model.UserRole
	profiles  map[string]model.UserProfile
	slacks    map[string]model.UserSlack

	failOn map[string]error
	writes int
	clock  time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users: map[string]model.User{},
		roles: map[int64]model.Role{
			1: {RoleID: 1, RoleName: "admin"},
			2: {RoleID: 2, RoleName: "user"},
			3: {RoleID: 3, RoleName: "guest"},
		},
		userRoles: map[string]map[int64]model.UserRole{},
		profiles:  map[string]model.UserProfile{},
		slacks:    map[string]model.UserSlack{},
		failOn:    map[string]error{},
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) now() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) fail(op string) error {
	return m.failOn[op]
}

func (m *memStore) write(op string) error {
	if err := m.fail(op); err != nil {
		return err
	}
	m.writes++
	return nil
}

func (m *memStore) Users() repository.UserRepository           { return memUsers{m} }
func (m *memStore) Roles() repository.RoleRepository           { return memRoles{m} }
func (m *memStore) UserRoles() repository.UserRoleRepository   { return memUserRoles{m} }
func (m *memStore) Profiles() repository.UserProfileRepository { return memProfiles{m} }
func (m *memStore) Slacks() repository.UserSlackRepository     { return memSlacks{m} }

func (m *memStore) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	users := cloneMap(m.users)
	profiles := cloneMap(m.profiles)
	slacks := cloneMap(m.slacks)
	userRoles := make(map[string]map[int64]model.UserRole, len(m.userRoles))
	for k, v := range m.userRoles {
		userRoles[k] = cloneMap(v)
	}

	if err := fn(m); err != nil {
		m.users, m.profiles, m.slacks, m.userRoles = users, profiles, slacks, userRoles
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memStore) activeRoleIDs(userID string) []int64 {
	var ids []int64
	for id, link := range m.userRoles[userID] {
		if link.DeletedAt == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type memUsers struct{ m *memStore }

func (r memUsers) FindByID(ctx context.Context, userID string) (*model.User, error) {
	u, err := r.FindByIDWithDeleted(ctx, userID)
	if err != nil || u == nil || u.DeletedAt != nil {
		return nil, err
	}
	return u, nil
}

func (r memUsers) FindByIDWithDeleted(_ context.Context, userID string) (*model.User, error) {
	if err := r.m.fail("users.find"); err != nil {
		return nil, err
	}
	u, ok := r.m.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) Create(_ context.Context, user *model.User) error {
	if err := r.m.write("users.create"); err != nil {
		return err
	}
	if _, ok := r.m.users[user.UserID]; ok {
		return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	}
	now := r.m.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.m.users[user.UserID] = *user
	return nil
}

func (r memUsers) Restore(_ context.Context, user *model.User) error {
	if err := r.m.write("users.restore"); err != nil {
		return err
	}
	u := r.m.users[user.UserID]
	u.DeletedAt = nil
	u.Password = user.Password
	u.UpdatedAt = r.m.now()
	r.m.users[user.UserID] = u
	user.UpdatedAt, user.DeletedAt = u.UpdatedAt, nil
	return nil
}

func (r memUsers) SoftDelete(_ context.Context, userID string) (bool, error) {
	if err := r.m.write("users.delete"); err != nil {
		return false, err
	}
	u, ok := r.m.users[userID]
	if !ok || u.DeletedAt != nil {
		return false, nil
	}
	now := r.m.now()
	u.DeletedAt = &now
	r.m.users[userID] = u
	return true, nil
}

type memRoles struct{ m *memStore }

func (r memRoles) FindByIDs(_ context.Context, roleIDs []int64) ([]model.Role, error) {
	roles := []model.Role{}
	for _, id := range roleIDs {
		if role, ok := r.m.roles[id]; ok {
			roles = append(roles, role)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].RoleID < roles[j].RoleID })
	return roles, nil
}

type memUserRoles struct{ m *memStore }

func (r memUserRoles) FindByUserID(_ context.Context, userID string) ([]model.UserRole, error) {
	links := []model.UserRole{}
	for _, link := range r.m.userRoles[userID] {
		links = append(links, link)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].RoleID < links[j].RoleID })
	return links, nil
}

func (r memUserRoles) FindActiveRoles(_ context.Context, userID string) ([]model.Role, error) {
	roles := []model.Role{}
	for _, id := range r.m.activeRoleIDs(userID) {
		roles = append(roles, r.m.roles[id])
	}
	return roles, nil
}

func (r memUserRoles) SoftDelete(_ context.Context, userID string, roleIDs []int64) error {
	return r.update("user_roles.delete", userID, roleIDs, func(link *model.UserRole, now time.Time) {
		if link.DeletedAt == nil {
			link.DeletedAt = &now
		}
	})
}

func (r memUserRoles) Restore(_ context.Context, userID string, roleIDs []int64) error {
	return r.update("user_roles.restore", userID, roleIDs, func(link *model.UserRole, _ time.Time) {
		link.DeletedAt = nil
	})
}

func (r memUserRoles) update(op, userID string, roleIDs []int64, fn func(*model.UserRole, time.Time)) error {
	if len(roleIDs) == 0 {
		return nil
	}
	if err := r.m.write(op); err != nil {
		return err
	}
	now := r.m.now()
	for _, id := range roleIDs {
		link, ok := r.m.userRoles[userID][id]
		if !ok {
			continue
		}
		fn(&link, now)
		link.UpdatedAt = now
		r.m.userRoles[userID][id] = link
	}
	return nil
}

func (r memUserRoles) Create(_ context.Context, userID string, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	if err := r.m.write("user_roles.create"); err != nil {
		return err
	}
	if r.m.userRoles[userID] == nil {
		r.m.userRoles[userID] = map[int64]model.UserRole{}
	}
	now := r.m.now()
	for _, id := range roleIDs {
		if _, ok := r.m.userRoles[userID][id]; ok {
			return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
		r.m.userRoles[userID][id] = model.UserRole{UserID: userID, RoleID: id, CreatedAt: now, UpdatedAt: now}
	}
	return nil
}

type memProfiles struct{ m *memStore }

func (r memProfiles) FindByUserIDWithDeleted(_ context.Context, userID string) (*model.UserProfile, error) {
	p, ok := r.m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProfiles) Create(_ context.Context, profile *model.UserProfile) error {
	if err := r.m.write("profiles.create"); err != nil {
		return err
	}
	now := r.m.now()
	profile.CreatedAt, profile.UpdatedAt = now, now
	r.m.profiles[profile.UserID] = *profile
	return nil
}

func (r memProfiles) Restore(_ context.Context, profile *model.UserProfile) error {
	if err := r.m.write("profiles.restore"); err != nil {
		return err
	}
	profile.DeletedAt = nil
	profile.UpdatedAt = r.m.now()
	r.m.profiles[profile.UserID] = *profile
	return nil
}

type memSlacks struct{ m *memStore }

func (r memSlacks) FindByUserIDWithDeleted(_ context.Context, userID string) (*model.UserSlack, error) {
	s, ok := r.m.slacks[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memSlacks) FindActiveByUserID(ctx context.Context, userID string) (*model.UserSlack, error) {
	s, err := r.FindByUserIDWithDeleted(ctx, userID)
	if err != nil || s == nil || s.DeletedAt != nil {
		return nil, err
	}
	return s, nil
}

func (r memSlacks) Create(_ context.Context, link *model.UserSlack) error {
	if err := r.m.write("slacks.create"); err != nil {
		return err
	}
	now := r.m.now()
	link.CreatedAt, link.UpdatedAt = now, now
	r.m.slacks[link.UserID] = *link
	return nil
}

func (r memSlacks) Restore(_ context.Context, link *model.UserSlack) error {
	if err := r.m.write("slacks.restore"); err != nil {
		return err
	}
	link.CreatedAt = r.m.slacks[link.UserID].CreatedAt
	link.DeletedAt = nil
	link.UpdatedAt = r.m.now()
	r.m.slacks[link.UserID] = *link
	return nil
}

// recordingPublisher captures published events; publishing happens on a
// separate goroutine so reads go through the mutex.
type recordingPublisher struct {
	mu         sync.Mutex
	registered []string
	deleted    []string
	linked     []string
}

func (p *recordingPublisher) PublishUserRegistered(userID string, _ bool, _ []int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, userID)
	return nil
}

func (p *recordingPublisher) PublishUserDeleted(userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, userID)
	return nil
}

func (p *recordingPublisher) PublishSlackLinked(userID, _, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.linked = append(p.linked, userID)
	return nil
}

func (p *recordingPublisher) counts() (int, int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.registered), len(p.deleted), len(p.linked)
}

type fakeProvider struct {
	access      *slack.Access
	user        *slack.User
	exchangeErr error
	infoErr     error

	lastRedirect string
	infoCalls    int
}

func (f *fakeProvider) AuthCodeURL(redirectURI string) string {
	return "https://slack.test/oauth/v2/authorize?redirect_uri=" + redirectURI
}

func (f *fakeProvider) Exchange(_ context.Context, _, redirectURI string) (*slack.Access, error) {
	f.lastRedirect = redirectURI
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.access, nil
}

func (f *fakeProvider) UserInfo(_ context.Context, _ string) (*slack.User, error) {
	f.infoCalls++
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.user, nil
}

func (f *fakeProvider) AuthTest(_ context.Context, accessToken string) (*slack.AuthTestResult, error) {
	if accessToken == "" {
		return nil, errors.New("not_authed")
	}
	return &slack.AuthTestResult{UserID: "U1", TeamID: "T1"}, nil
}

func slackUser(email string) *slack.User {
	return &slack.User{
		ID:       "U123",
		TeamID:   "T999",
		Name:     "alice",
		RealName: "Alice Liddell",
		Profile: slack.Profile{
			Email:       email,
			DisplayName: "alice",
			Image24:     "https://img.test/24.png",
			Image512:    "https://img.test/512.png",
		},
	}
}

// racingStore hides one user from lookups outside a transaction, simulating a
// row committed by a concurrent request.
type racingStore struct {
	*memStore
	hidden string
}

func (r *racingStore) Users() repository.UserRepository {
	return racingUsers{memUsers: memUsers{r.memStore}, hidden: r.hidden}
}

type racingUsers struct {
	memUsers
	hidden string
}

func (r racingUsers) FindByIDWithDeleted(ctx context.Context, userID string) (*model.User, error) {
	if userID == r.hidden {
		return nil, nil
	}
	return r.memUsers.FindByIDWithDeleted(ctx, userID)
}
