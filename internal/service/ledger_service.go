// Package service implements SplitSmart's use cases on top of a storage
// backend: registering users, managing groups, recording expenses and
// settlements, and reporting the resulting debts.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/ledger"
	"github.com/mmynk/splitsmart/internal/metrics"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/storage"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrGroupNotFound  = errors.New("group not found")
	ErrGroupExists    = errors.New("group already exists")
	ErrNoParticipants = errors.New("no valid participants")
	ErrPayerNotMember = errors.New("payer is not a member of the group")
	ErrInvalidInput   = errors.New("invalid input")
)

// AllMembers selects every group member as an expense participant.
const AllMembers = "all"

// LedgerService coordinates storage and the in-memory group ledgers.
//
// Groups are loaded from storage on first use by replaying their history and
// then kept in memory. Writes go to storage first and are applied to the
// in-memory ledger only once persisted. Operations on the same group are
// serialized; different groups proceed independently.
type LedgerService struct {
	store   storage.Store
	metrics *metrics.Recorder

	mu     sync.Mutex
	groups map[string]*groupState
}

type groupState struct {
	mu     sync.Mutex
	record *models.Group
	ledger *ledger.Group
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithMetrics records ledger activity on the given recorder.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *LedgerService) { s.metrics = rec }
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:  store,
		groups: make(map[string]*groupState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddUser registers a new user.
func (s *LedgerService) AddUser(ctx context.Context, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: user name is required", ErrInvalidInput)
	}

	user := &models.User{Name: name, Email: strings.TrimSpace(email)}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, name)
		}
		slog.Error("AddUser failed", "name", name, "error", err)
		return nil, err
	}

	slog.Info("User added", "name", name)
	return user, nil
}

// ListUsers returns all registered users.
func (s *LedgerService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}

// CreateGroup creates a group. Member names that are not registered users
// are skipped and returned so the caller can report them.
func (s *LedgerService) CreateGroup(ctx context.Context, name string, members []string) (*models.Group, []string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}

	known, skipped, err := s.resolveUsers(ctx, members)
	if err != nil {
		return nil, nil, err
	}
	for _, n := range skipped {
		slog.Warn("User not found and not added", "group", name, "name", n)
	}

	group := &models.Group{Name: name, Members: known}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, nil, fmt.Errorf("%w: %s", ErrGroupExists, name)
		}
		slog.Error("CreateGroup failed", "name", name, "error", err)
		return nil, nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "name", name, "members_count", len(known))
	return group, skipped, nil
}

// GetGroup looks up a group by name.
func (s *LedgerService) GetGroup(ctx context.Context, name string) (*models.Group, error) {
	gs, err := s.group(ctx, name)
	if err != nil {
		return nil, err
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return cloneGroup(gs.record), nil
}

// ListGroups returns all groups.
func (s *LedgerService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.store.ListGroups(ctx)
}

// AddMembers adds registered users to a group. Existing members are ignored.
func (s *LedgerService) AddMembers(ctx context.Context, groupName string, names []string) (*models.Group, error) {
	gs, err := s.group(ctx, groupName)
	if err != nil {
		return nil, err
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()

	var added []string
	for _, n := range dedupe(names) {
		if _, err := s.user(ctx, n); err != nil {
			return nil, err
		}
		if !gs.ledger.IsMember(n) {
			added = append(added, n)
		}
	}
	if len(added) == 0 {
		return cloneGroup(gs.record), nil
	}

	if err := s.store.AddGroupMembers(ctx, gs.record.ID, added); err != nil {
		slog.Error("AddMembers failed", "group", groupName, "error", err)
		return nil, err
	}
	for _, n := range added {
		gs.ledger.AddMember(n)
	}
	gs.record.Members = gs.ledger.Members()

	slog.Info("Members added", "group", groupName, "new_members", added)
	return cloneGroup(gs.record), nil
}

// ExpenseRequest describes an expense to record.
type ExpenseRequest struct {
	Group       string
	Description string
	Amount      float64
	PaidBy      string
	// Participants are user names, or the single entry AllMembers.
	// Names that are not registered users are dropped.
	Participants []string
	Split        calculator.Split
}

// AddExpense records an expense and returns it with the group's updated debts.
// An invalid split or payer aborts the operation and nothing is recorded.
func (s *LedgerService) AddExpense(ctx context.Context, req ExpenseRequest) (*models.Expense, []calculator.DebtEdge, error) {
	gs, err := s.group(ctx, req.Group)
	if err != nil {
		return nil, nil, err
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if _, err := s.user(ctx, req.PaidBy); err != nil {
		s.metrics.ExpenseRejected("payer")
		return nil, nil, err
	}
	if !gs.ledger.IsMember(req.PaidBy) {
		s.metrics.ExpenseRejected("payer")
		return nil, nil, fmt.Errorf("%w: %s in %s", ErrPayerNotMember, req.PaidBy, req.Group)
	}

	participants, err := s.resolveParticipants(ctx, gs, req.Participants)
	if err != nil {
		return nil, nil, err
	}
	if len(participants) == 0 {
		s.metrics.ExpenseRejected("participants")
		return nil, nil, ErrNoParticipants
	}

	expense, err := ledger.NewExpense(req.Description, req.Amount, req.PaidBy, participants, req.Split)
	if err != nil {
		s.metrics.ExpenseRejected("validation")
		slog.Warn("AddExpense rejected", "group", req.Group, "description", req.Description, "error", err)
		return nil, nil, err
	}
	expense.GroupID = gs.record.ID

	if err := s.store.CreateExpense(ctx, &expense); err != nil {
		slog.Error("AddExpense failed", "group", req.Group, "error", err)
		return nil, nil, err
	}

	start := time.Now()
	if err := gs.ledger.AddExpense(expense); err != nil {
		return nil, nil, err
	}
	debts := gs.ledger.Debts()
	s.metrics.ObserveRecompute(time.Since(start), len(debts))
	s.metrics.ExpenseRecorded(expense.SplitType)

	slog.Info("Expense added",
		"group", req.Group,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"paid_by", expense.PaidBy,
		"split", expense.SplitType,
		"debts_count", len(debts),
	)
	return &expense, debts, nil
}

// SettlementRequest describes a direct payment between two members.
type SettlementRequest struct {
	Group     string
	From      string
	To        string
	Amount    float64
	CreatedBy string
	Note      string
}

// SettleUp records a settlement and returns the group's updated debts.
// The amount is not checked against outstanding debts.
func (s *LedgerService) SettleUp(ctx context.Context, req SettlementRequest) (*models.Settlement, []calculator.DebtEdge, error) {
	gs, err := s.group(ctx, req.Group)
	if err != nil {
		return nil, nil, err
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()

	for _, name := range []string{req.From, req.To} {
		if _, err := s.user(ctx, name); err != nil {
			return nil, nil, err
		}
		if !gs.ledger.IsMember(name) {
			return nil, nil, fmt.Errorf("%w: %s is not a member of %s", calculator.ErrUnknownParticipant, name, req.Group)
		}
	}

	settlement := models.Settlement{
		GroupID:   gs.record.ID,
		FromUser:  req.From,
		ToUser:    req.To,
		Amount:    req.Amount,
		CreatedBy: req.CreatedBy,
		Note:      req.Note,
	}
	if err := s.store.CreateSettlement(ctx, &settlement); err != nil {
		slog.Error("SettleUp failed", "group", req.Group, "error", err)
		return nil, nil, err
	}

	start := time.Now()
	if err := gs.ledger.SettleUp(settlement); err != nil {
		return nil, nil, err
	}
	debts := gs.ledger.Debts()
	s.metrics.ObserveRecompute(time.Since(start), len(debts))
	s.metrics.SettlementRecorded()

	slog.Info("Settlement recorded",
		"group", req.Group,
		"settlement_id", settlement.ID,
		"from", req.From,
		"to", req.To,
		"amount", req.Amount,
	)
	return &settlement, debts, nil
}

// GetDebts returns the group's simplified debts.
func (s *LedgerService) GetDebts(ctx context.Context, groupName string) ([]calculator.DebtEdge, error) {
	gs, err := s.group(ctx, groupName)
	if err != nil {
		return nil, err
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.ledger.Debts(), nil
}

// GetBalances returns every member's net balance.
func (s *LedgerService) GetBalances(ctx context.Context, groupName string) ([]calculator.MemberBalance, error) {
	gs, err := s.group(ctx, groupName)
	if err != nil {
		return nil, err
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.ledger.Balances(), nil
}

// ListExpenses returns the group's expenses oldest first.
func (s *LedgerService) ListExpenses(ctx context.Context, groupName string) ([]models.Expense, error) {
	gs, err := s.group(ctx, groupName)
	if err != nil {
		return nil, err
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.ledger.Expenses(), nil
}

// group finds a group by name, loading and replaying it on first use.
func (s *LedgerService) group(ctx context.Context, name string) (*groupState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gs, ok := s.groups[name]; ok {
		return gs, nil
	}

	record, err := s.store.GetGroupByName(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	stored, err := s.store.ListExpensesByGroup(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	expenses := make([]models.Expense, len(stored))
	for i, e := range stored {
		r := ledger.RehydrateExpense(e.Description, e.Amount, e.PaidBy, e.Participants, e.Shares)
		r.ID, r.GroupID, r.SplitType, r.CreatedAt = e.ID, e.GroupID, e.SplitType, e.CreatedAt
		expenses[i] = r
	}

	storedSettlements, err := s.store.ListSettlementsByGroup(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	settlements := make([]models.Settlement, len(storedSettlements))
	for i, st := range storedSettlements {
		settlements[i] = *st
	}

	lg, err := ledger.Replay(record.Name, record.Members, expenses, settlements)
	if err != nil {
		return nil, fmt.Errorf("failed to load group %s: %w", name, err)
	}

	slog.Debug("Group loaded",
		"group", name,
		"expenses_count", len(expenses),
		"settlements_count", len(settlements),
	)
	gs := &groupState{record: record, ledger: lg}
	s.groups[name] = gs
	return gs, nil
}

func (s *LedgerService) user(ctx context.Context, name string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}
	return user, err
}

// resolveUsers splits names into registered users and unknown names.
func (s *LedgerService) resolveUsers(ctx context.Context, names []string) (known, unknown []string, err error) {
	for _, n := range dedupe(names) {
		_, err := s.user(ctx, n)
		switch {
		case err == nil:
			known = append(known, n)
		case errors.Is(err, ErrUserNotFound):
			unknown = append(unknown, n)
		default:
			return nil, nil, err
		}
	}
	return known, unknown, nil
}

func (s *LedgerService) resolveParticipants(ctx context.Context, gs *groupState, names []string) ([]string, error) {
	if len(names) == 1 && strings.EqualFold(strings.TrimSpace(names[0]), AllMembers) {
		return gs.ledger.Members(), nil
	}
	known, unknown, err := s.resolveUsers(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		slog.Warn("Ignoring unknown participants", "group", gs.record.Name, "names", unknown)
	}
	return known, nil
}

// dedupe trims names and drops blanks and repeats, keeping first occurrence order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func cloneGroup(g *models.Group) *models.Group {
	c := *g
	c.Members = append([]string(nil), g.Members...)
	return &c
}
