package pickup

import (
	"context"
	"strings"

	"github.com/ecopickup/ecopickup/internal/kv"
)

// Repository reads pickup, points and account collections from a kv.Store.
type Repository struct {
	store kv.Store
}

// NewRepository constructs a Repository.
func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store}
}

// ListPickups returns all pickups, or only those owned by userID when it is set.
func (r *Repository) ListPickups(ctx context.Context, userID string) ([]PickupRequest, error) {
	var all []PickupRequest
	if _, err := kv.ReadJSON(ctx, r.store, kv.KeyPickupRequests, &all); err != nil {
		return nil, err
	}
	if userID == "" {
		if all == nil {
			all = []PickupRequest{}
		}
		return all, nil
	}
	owned := make([]PickupRequest, 0, len(all))
	for _, p := range all {
		if p.UserID == userID {
			owned = append(owned, p)
		}
	}
	return owned, nil
}

// PointsBalance sums the ledger entries belonging to userID.
func (r *Repository) PointsBalance(ctx context.Context, userID string) (Balance, error) {
	var ledger []PointsLedgerEntry
	if _, err := kv.ReadJSON(ctx, r.store, kv.KeyUserPoints, &ledger); err != nil {
		return Balance{}, err
	}
	balance := Balance{UserID: userID, Entries: []PointsLedgerEntry{}}
	for _, entry := range ledger {
		if entry.UserID != userID {
			continue
		}
		balance.Total += entry.PointsEarned
		balance.Entries = append(balance.Entries, entry)
	}
	return balance, nil
}

// ListUsers returns every stored account.
func (r *Repository) ListUsers(ctx context.Context) ([]UserAccount, error) {
	var users []UserAccount
	if _, err := kv.ReadJSON(ctx, r.store, kv.KeyUsers, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []UserAccount{}
	}
	return users, nil
}

// FindUserByEmail looks up an account by email, ignoring case.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (UserAccount, error) {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return UserAccount{}, err
	}
	email = strings.TrimSpace(email)
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return UserAccount{}, ErrNotFound
}
