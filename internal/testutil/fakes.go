// Package testutil provides in-memory fakes and spies for the sync
// layer and stores. The fakes keep the same upsert and update semantics
// as the Mongo stores so tests exercise real merge behavior without a
// database.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	userstore "github.com/stoutly/stoutly/internal/app/store/users"
	"github.com/stoutly/stoutly/internal/app/sync/alerts"
	"github.com/stoutly/stoutly/internal/app/sync/authfeed"
	"github.com/stoutly/stoutly/internal/app/system/normalize"
	"github.com/stoutly/stoutly/internal/domain/models"
)

// MemoryUsers is an in-memory users store. It mirrors the Mongo store's
// upsert semantics: Register is set-on-match with created_at stamped
// only on first insert, so re-registering is idempotent.
type MemoryUsers struct {
	mu    sync.Mutex
	docs  map[string]models.User
	calls struct {
		Get, Register, UpdateStatus, Approve, Reject int
	}

	// Err, when set, fails every operation.
	Err error
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{docs: make(map[string]models.User)}
}

// Seed stores a document directly, bypassing call counting.
func (m *MemoryUsers) Seed(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[u.ID] = u
}

// Doc returns the stored document and whether it exists.
func (m *MemoryUsers) Doc(id string) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.docs[id]
	return u, ok
}

// GetCalls reports how many lookups ran.
func (m *MemoryUsers) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Get
}

func (m *MemoryUsers) Get(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Get++
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.docs[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.docs {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, userstore.ErrNotFound
}

func (m *MemoryUsers) Register(ctx context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Register++
	if m.Err != nil {
		return m.Err
	}
	// Mirror the Mongo store: merge onto any existing document, reset
	// status to pending, stamp created_at server-side.
	doc := m.docs[u.ID]
	doc.ID = u.ID
	doc.Name = normalize.Name(u.Name)
	doc.Email = normalize.Email(u.Email)
	doc.Phone = u.Phone
	doc.Location = u.Location
	doc.SelfieURL = u.SelfieURL
	doc.Status = models.StatusPending
	doc.CreatedAt = time.Now()
	m.docs[u.ID] = doc
	return nil
}

func (m *MemoryUsers) UpdateStatus(ctx context.Context, id, status, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.UpdateStatus++
	if m.Err != nil {
		return m.Err
	}
	u, ok := m.docs[id]
	if !ok {
		// matches the store: updating a missing document is a no-op
		return nil
	}
	u.Status = status
	if username != "" {
		u.Username = username
	}
	m.docs[id] = u
	return nil
}

func (m *MemoryUsers) Approve(ctx context.Context, id, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Approve++
	if m.Err != nil {
		return m.Err
	}
	u, ok := m.docs[id]
	if !ok {
		return nil
	}
	now := time.Now()
	u.Status = models.StatusApproved
	u.Username = username
	u.ApprovedAt = &now
	m.docs[id] = u
	return nil
}

func (m *MemoryUsers) Reject(ctx context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Reject++
	if m.Err != nil {
		return m.Err
	}
	u, ok := m.docs[id]
	if !ok {
		return nil
	}
	now := time.Now()
	u.Status = models.StatusRejected
	u.RejectionReason = reason
	u.RejectedAt = &now
	m.docs[id] = u
	return nil
}

func (m *MemoryUsers) ListPending(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.User
	for _, u := range m.docs {
		if u.Status == models.StatusPending {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MemoryUsers) ListAll(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.User
	for _, u := range m.docs {
		out = append(out, u)
	}
	return out, nil
}

// MemoryAdmins is an in-memory admins store that counts lookups so
// tests can assert when membership checks were skipped.
type MemoryAdmins struct {
	mu     sync.Mutex
	emails map[string]bool
	exists int

	Err error
}

func NewMemoryAdmins(emails ...string) *MemoryAdmins {
	m := &MemoryAdmins{emails: make(map[string]bool)}
	for _, e := range emails {
		m.emails[e] = true
	}
	return m
}

func (m *MemoryAdmins) Exists(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exists++
	if m.Err != nil {
		return false, m.Err
	}
	return m.emails[email], nil
}

// ExistsCalls reports how many membership lookups ran.
func (m *MemoryAdmins) ExistsCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exists
}

// RecordingDeleter records deleted ids and can fail on demand.
type RecordingDeleter struct {
	Err error

	mu      sync.Mutex
	deleted []string
}

func (d *RecordingDeleter) Delete(ctx context.Context, id string) error {
	if d.Err != nil {
		return d.Err
	}
	d.mu.Lock()
	d.deleted = append(d.deleted, id)
	d.mu.Unlock()
	return nil
}

func (d *RecordingDeleter) Deleted() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.deleted))
	copy(out, d.deleted)
	return out
}

// ScriptedFeed is an auth-state feed driven by the test. Emit delivers
// synchronously so assertions can follow immediately.
type ScriptedFeed struct {
	mu        sync.Mutex
	next      int
	fns       map[int]func(p *authfeed.Principal)
	cancelled int
}

func (f *ScriptedFeed) Subscribe(fn func(p *authfeed.Principal)) (cancel func()) {
	f.mu.Lock()
	if f.fns == nil {
		f.fns = make(map[int]func(p *authfeed.Principal))
	}
	id := f.next
	f.next++
	f.fns[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		if _, ok := f.fns[id]; ok {
			delete(f.fns, id)
			f.cancelled++
		}
		f.mu.Unlock()
	}
}

func (f *ScriptedFeed) Emit(p *authfeed.Principal) {
	f.mu.Lock()
	fns := make([]func(p *authfeed.Principal), 0, len(f.fns))
	for _, fn := range f.fns {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
}

func (f *ScriptedFeed) Cancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled > 0
}

// CancelCount reports how many subscriptions have been cancelled.
func (f *ScriptedFeed) CancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

// FakeAuth scripts the external credential service.
type FakeAuth struct {
	CreateErr error
	SignInErr error
	NameErr   error

	mu          sync.Mutex
	created     []string
	displayName string
}

func (a *FakeAuth) CreateUser(ctx context.Context, email, password string) (*authfeed.Principal, error) {
	if a.CreateErr != nil {
		return nil, a.CreateErr
	}
	a.mu.Lock()
	a.created = append(a.created, email)
	a.mu.Unlock()
	return &authfeed.Principal{UID: "uid-" + email, Email: email}, nil
}

func (a *FakeAuth) UpdateDisplayName(ctx context.Context, uid, name string) error {
	if a.NameErr != nil {
		return a.NameErr
	}
	a.mu.Lock()
	a.displayName = name
	a.mu.Unlock()
	return nil
}

func (a *FakeAuth) SignIn(ctx context.Context, email, password string) (*authfeed.Principal, error) {
	if a.SignInErr != nil {
		return nil, a.SignInErr
	}
	return &authfeed.Principal{UID: "uid-" + email, Email: email}, nil
}

func (a *FakeAuth) DisplayName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.displayName
}

// FakeNotifier emits change signals on demand. Each Changes call gets
// its own stream, matching a real per-subscription change feed, so one
// notifier can back several watches. Cancel behavior is configurable so
// teardown isolation can be exercised.
type FakeNotifier struct {
	// CancelErr is returned by the cancel function when set.
	CancelErr error
	// CancelPanics makes the cancel function panic when set.
	CancelPanics bool

	mu        sync.Mutex
	chans     []chan struct{}
	cancelled int
}

func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{}
}

func (n *FakeNotifier) Changes(ctx context.Context) (<-chan struct{}, func() error, error) {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.chans = append(n.chans, ch)
	n.mu.Unlock()
	var once sync.Once
	cancel := func() error {
		n.mu.Lock()
		n.cancelled++
		n.mu.Unlock()
		if n.CancelPanics {
			panic("notifier cancel")
		}
		once.Do(func() { close(ch) })
		return n.CancelErr
	}
	return ch, cancel, nil
}

// Signal emits one change on every open stream. It blocks until each
// subscriber drains its previous signal, keeping test ordering
// deterministic. Call it only while the streams are open.
func (n *FakeNotifier) Signal() {
	n.mu.Lock()
	chans := make([]chan struct{}, len(n.chans))
	copy(chans, n.chans)
	n.mu.Unlock()
	for _, ch := range chans {
		ch <- struct{}{}
	}
}

func (n *FakeNotifier) CancelCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cancelled
}

// SpyConfirmer answers prompts from a script and records them.
type SpyConfirmer struct {
	// Answer is returned for every prompt.
	Answer bool
	Err    error

	mu      sync.Mutex
	prompts []alerts.Prompt
}

func (c *SpyConfirmer) Confirm(ctx context.Context, p alerts.Prompt) (bool, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, p)
	c.mu.Unlock()
	if c.Err != nil {
		return false, c.Err
	}
	return c.Answer, nil
}

func (c *SpyConfirmer) Prompts() []alerts.Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]alerts.Prompt, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// SpyNotices records success and error notices.
type SpyNotices struct {
	mu        sync.Mutex
	successes []string
	errs      []string
}

func (n *SpyNotices) Success(msg string) {
	n.mu.Lock()
	n.successes = append(n.successes, msg)
	n.mu.Unlock()
}

func (n *SpyNotices) Error(msg string) {
	n.mu.Lock()
	n.errs = append(n.errs, msg)
	n.mu.Unlock()
}

func (n *SpyNotices) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.successes))
	copy(out, n.successes)
	return out
}

func (n *SpyNotices) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.errs))
	copy(out, n.errs)
	return out
}

// SpyNavigator records route navigation.
type SpyNavigator struct {
	mu       sync.Mutex
	replaced []string
	backs    int
}

func (s *SpyNavigator) Replace(route string) {
	s.mu.Lock()
	s.replaced = append(s.replaced, route)
	s.mu.Unlock()
}

func (s *SpyNavigator) Back() {
	s.mu.Lock()
	s.backs++
	s.mu.Unlock()
}

func (s *SpyNavigator) Replaced() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.replaced))
	copy(out, s.replaced)
	return out
}

// ErrScripted is a reusable injected failure.
var ErrScripted = errors.New("scripted failure")
