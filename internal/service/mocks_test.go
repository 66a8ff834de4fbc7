package service

import (
	"context"
	"errors"
	"time"

	"github.com/craftlink/marketplace-api/internal/domain"
)

// ---------- Mocks ----------

type mockBanRepo struct {
	nextID    int64
	bans      []domain.Ban
	severeErr error
	insertErr error
	countErr  error
}

func newMockBanRepo() *mockBanRepo {
	return &mockBanRepo{nextID: 1}
}

func (m *mockBanRepo) Insert(_ context.Context, userID int64, kind domain.BanKind, reason string, strikeCount int, expiresAt *time.Time) (*domain.Ban, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	b := domain.Ban{
		ID:          m.nextID,
		UserID:      userID,
		Kind:        kind,
		Reason:      reason,
		StrikeCount: strikeCount,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}
	m.nextID++
	m.bans = append(m.bans, b)
	return &b, nil
}

func (m *mockBanRepo) MostSevereActive(_ context.Context, userID int64, now time.Time) (*domain.Ban, error) {
	if m.severeErr != nil {
		return nil, m.severeErr
	}
	var best *domain.Ban
	for i := range m.bans {
		b := &m.bans[i]
		if b.UserID != userID || !b.ActiveAt(now) {
			continue
		}
		switch {
		case best == nil:
			best = b
		case b.Kind == domain.BanPermanent && best.Kind != domain.BanPermanent:
			best = b
		case b.Kind == best.Kind && b.Kind == domain.BanTemporary && b.ExpiresAt.After(*best.ExpiresAt):
			best = b
		}
	}
	if best == nil {
		return nil, nil
	}
	out := *best
	return &out, nil
}

func (m *mockBanRepo) CountTemporary(_ context.Context, userID int64) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	n := 0
	for _, b := range m.bans {
		if b.UserID == userID && b.Kind == domain.BanTemporary {
			n++
		}
	}
	return n, nil
}

type mockCancellationRepo struct {
	nextID    int64
	records   []domain.CancellationRecord
	insertErr error
	countErr  error
	now       func() time.Time
}

func newMockCancellationRepo(now func() time.Time) *mockCancellationRepo {
	return &mockCancellationRepo{nextID: 1, now: now}
}

func (m *mockCancellationRepo) Insert(_ context.Context, userID, bookingID int64, reason string) (*domain.CancellationRecord, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	c := domain.CancellationRecord{
		ID:        m.nextID,
		UserID:    userID,
		BookingID: bookingID,
		Reason:    reason,
		CreatedAt: m.now(),
	}
	m.nextID++
	m.records = append(m.records, c)
	return &c, nil
}

func (m *mockCancellationRepo) CountSince(_ context.Context, userID int64, since time.Time) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	n := 0
	for _, c := range m.records {
		if c.UserID == userID && !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type mockUserRepo struct {
	users map[int64]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*domain.User)}
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

type mockSubscriptionRepo struct {
	nextID    int64
	subs      []domain.Subscription
	insertErr error
	statusErr error
}

func newMockSubscriptionRepo() *mockSubscriptionRepo {
	return &mockSubscriptionRepo{nextID: 1}
}

func (m *mockSubscriptionRepo) Insert(_ context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	s := *sub
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	m.nextID++
	m.subs = append(m.subs, s)
	return &s, nil
}

func (m *mockSubscriptionRepo) LatestByProvider(_ context.Context, providerID int64) (*domain.Subscription, error) {
	var latest *domain.Subscription
	for i := range m.subs {
		s := &m.subs[i]
		if s.ProviderID != providerID {
			continue
		}
		if latest == nil || s.ID > latest.ID {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (m *mockSubscriptionRepo) SetStatus(_ context.Context, id int64, status domain.SubscriptionStatus) (*domain.Subscription, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs[i].Status = status
			out := m.subs[i]
			return &out, nil
		}
	}
	return nil, errors.New("subscription not found")
}

type mockProviderRepo struct {
	providers map[int64]*domain.ProviderProfile
	tierErr   error
}

func newMockProviderRepo() *mockProviderRepo {
	return &mockProviderRepo{providers: make(map[int64]*domain.ProviderProfile)}
}

func (m *mockProviderRepo) GetByID(_ context.Context, id int64) (*domain.ProviderProfile, error) {
	p, ok := m.providers[id]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (m *mockProviderRepo) GetByUserID(_ context.Context, userID int64) (*domain.ProviderProfile, error) {
	for _, p := range m.providers {
		if p.UserID == userID {
			out := *p
			return &out, nil
		}
	}
	return nil, nil
}

func (m *mockProviderRepo) List(_ context.Context, limit, offset int) ([]domain.ProviderProfile, error) {
	out := make([]domain.ProviderProfile, 0, len(m.providers))
	for _, p := range m.providers {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProviderRepo) Update(_ context.Context, id int64, patch domain.ProviderPatch) (*domain.ProviderProfile, error) {
	p, ok := m.providers[id]
	if !ok {
		return nil, errors.New("provider not found")
	}
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.Phone != nil {
		p.Phone = patch.Phone
	}
	if patch.PhoneVisible != nil {
		p.PhoneVisible = *patch.PhoneVisible
	}
	if patch.Available != nil {
		p.Available = *patch.Available
	}
	out := *p
	return &out, nil
}

func (m *mockProviderRepo) SetTier(_ context.Context, id int64, tier domain.Tier) (*domain.ProviderProfile, error) {
	if m.tierErr != nil {
		return nil, m.tierErr
	}
	p, ok := m.providers[id]
	if !ok {
		return nil, errors.New("provider not found")
	}
	p.Tier = tier
	out := *p
	return &out, nil
}

type mockPublisher struct {
	published []string
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type mockNotifier struct {
	notices []string
	err     error
}

func (m *mockNotifier) BanNotice(_ context.Context, email, _, kind, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.notices = append(m.notices, email+":"+kind)
	return nil
}

type mockCharger struct {
	charges []int64
	err     error
}

func (m *mockCharger) Charge(_ context.Context, amount int64, _, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.charges = append(m.charges, amount)
	return "pi_test", nil
}
