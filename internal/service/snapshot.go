package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitsmart/internal/ledger"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/storage"
	"github.com/mmynk/splitsmart/internal/storage/snapshot"
)

// Export captures all users and groups, with full group history, as a snapshot.
func (s *LedgerService) Export(ctx context.Context) (*snapshot.Snapshot, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	snap := &snapshot.Snapshot{
		Users:  make([]snapshot.User, 0, len(users)),
		Groups: make([]snapshot.Group, 0, len(groups)),
	}
	for _, u := range users {
		snap.Users = append(snap.Users, snapshot.User{Name: u.Name, Email: u.Email})
	}

	for _, g := range groups {
		gs, err := s.group(ctx, g.Name)
		if err != nil {
			return nil, err
		}
		gs.mu.Lock()
		sg := snapshot.Group{
			Name:        g.Name,
			Members:     gs.ledger.Members(),
			Expenses:    []snapshot.Expense{},
			Settlements: []snapshot.Settlement{},
		}
		for _, e := range gs.ledger.Expenses() {
			if e.Participants == nil {
				e.Participants = []string{}
			}
			sg.Expenses = append(sg.Expenses, snapshot.Expense{
				Description:  e.Description,
				Amount:       e.Amount,
				PaidBy:       e.PaidBy,
				Participants: e.Participants,
				Shares:       e.Shares,
			})
		}
		for _, st := range gs.ledger.Settlements() {
			sg.Settlements = append(sg.Settlements, snapshot.Settlement{From: st.FromUser, To: st.ToUser, Amount: st.Amount})
		}
		gs.mu.Unlock()
		snap.Groups = append(snap.Groups, sg)
	}

	slog.Info("Ledger exported", "users_count", len(snap.Users), "groups_count", len(snap.Groups))
	return snap, nil
}

// Import loads a snapshot into storage. Users that already exist are kept
// as they are; a group that already exists is an error. Expenses are
// restored from their stored shares without re-running any split.
func (s *LedgerService) Import(ctx context.Context, snap *snapshot.Snapshot) error {
	for _, u := range snap.Users {
		err := s.store.CreateUser(ctx, &models.User{Name: u.Name, Email: u.Email})
		if errors.Is(err, storage.ErrAlreadyExists) {
			slog.Debug("Import: user already exists", "name", u.Name)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.Name, err)
		}
	}

	for _, g := range snap.Groups {
		if err := s.importGroup(ctx, g); err != nil {
			return fmt.Errorf("failed to import group %s: %w", g.Name, err)
		}
	}

	slog.Info("Ledger imported", "users_count", len(snap.Users), "groups_count", len(snap.Groups))
	return nil
}

func (s *LedgerService) importGroup(ctx context.Context, g snapshot.Group) error {
	for _, m := range g.Members {
		if _, err := s.user(ctx, m); err != nil {
			return err
		}
	}

	// Check the history replays before writing anything.
	expenses := make([]models.Expense, len(g.Expenses))
	for i, e := range g.Expenses {
		expenses[i] = ledger.RehydrateExpense(e.Description, e.Amount, e.PaidBy, e.Participants, e.Shares)
	}
	settlements := make([]models.Settlement, len(g.Settlements))
	for i, st := range g.Settlements {
		settlements[i] = models.Settlement{FromUser: st.From, ToUser: st.To, Amount: st.Amount}
	}
	if _, err := ledger.Replay(g.Name, g.Members, expenses, settlements); err != nil {
		return err
	}

	record := &models.Group{Name: g.Name, Members: dedupe(g.Members)}
	expensePtrs := make([]*models.Expense, len(expenses))
	for i := range expenses {
		expensePtrs[i] = &expenses[i]
	}
	settlementPtrs := make([]*models.Settlement, len(settlements))
	for i := range settlements {
		settlementPtrs[i] = &settlements[i]
	}
	if err := s.store.ImportGroup(ctx, record, expensePtrs, settlementPtrs); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return fmt.Errorf("%w: %s", ErrGroupExists, g.Name)
		}
		return err
	}

	s.mu.Lock()
	delete(s.groups, g.Name)
	s.mu.Unlock()
	return nil
}
