package server

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/middleware"
	"github.com/mmynk/splitsmart/internal/service"
)

// ledgerHandler adapts LedgerService to connect unary handlers.
type ledgerHandler struct {
	svc      *service.LedgerService
	currency string
}

func (h *ledgerHandler) AddUser(ctx context.Context, req *connect.Request[AddUserRequest]) (*connect.Response[AddUserResponse], error) {
	user, err := h.svc.AddUser(ctx, req.Msg.Name, req.Msg.Email)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AddUserResponse{User: userToWire(user)}), nil
}

func (h *ledgerHandler) ListUsers(ctx context.Context, req *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	users, err := h.svc.ListUsers(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := &ListUsersResponse{Users: make([]User, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, userToWire(u))
	}
	return connect.NewResponse(resp), nil
}

func (h *ledgerHandler) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	group, skipped, err := h.svc.CreateGroup(ctx, req.Msg.Name, req.Msg.Members)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CreateGroupResponse{Group: groupToWire(group), Skipped: skipped}), nil
}

func (h *ledgerHandler) AddMembers(ctx context.Context, req *connect.Request[AddMembersRequest]) (*connect.Response[AddMembersResponse], error) {
	group, err := h.svc.AddMembers(ctx, req.Msg.Group, req.Msg.Members)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AddMembersResponse{Group: groupToWire(group)}), nil
}

func (h *ledgerHandler) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	group, err := h.svc.GetGroup(ctx, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetGroupResponse{Group: groupToWire(group)}), nil
}

func (h *ledgerHandler) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	groups, err := h.svc.ListGroups(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := &ListGroupsResponse{Groups: make([]Group, 0, len(groups))}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, groupToWire(g))
	}
	return connect.NewResponse(resp), nil
}

func (h *ledgerHandler) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	msg := req.Msg
	splitType := calculator.SplitEqual
	if msg.Split != "" {
		t, err := calculator.ParseSplitType(msg.Split)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		splitType = t
	}

	expense, debts, err := h.svc.AddExpense(ctx, service.ExpenseRequest{
		Group:        msg.Group,
		Description:  msg.Description,
		Amount:       msg.Amount,
		PaidBy:       msg.PaidBy,
		Participants: msg.Participants,
		Split: calculator.Split{
			Type:        splitType,
			Percentages: msg.Percentages,
			Amounts:     msg.Amounts,
		},
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AddExpenseResponse{
		Expense: expenseToWire(expense),
		Debts:   debtsToWire(debts, h.currency),
	}), nil
}

func (h *ledgerHandler) SettleUp(ctx context.Context, req *connect.Request[SettleUpRequest]) (*connect.Response[SettleUpResponse], error) {
	msg := req.Msg
	settlement, debts, err := h.svc.SettleUp(ctx, service.SettlementRequest{
		Group:     msg.Group,
		From:      msg.From,
		To:        msg.To,
		Amount:    msg.Amount,
		CreatedBy: middleware.GetUser(ctx),
		Note:      msg.Note,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SettleUpResponse{
		SettlementID: settlement.ID,
		Debts:        debtsToWire(debts, h.currency),
	}), nil
}

func (h *ledgerHandler) GetDebts(ctx context.Context, req *connect.Request[GetDebtsRequest]) (*connect.Response[GetDebtsResponse], error) {
	debts, err := h.svc.GetDebts(ctx, req.Msg.Group)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetDebtsResponse{Debts: debtsToWire(debts, h.currency)}), nil
}

func (h *ledgerHandler) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	balances, err := h.svc.GetBalances(ctx, req.Msg.Group)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetBalancesResponse{Balances: balancesToWire(balances)}), nil
}

func (h *ledgerHandler) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	expenses, err := h.svc.ListExpenses(ctx, req.Msg.Group)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := &ListExpensesResponse{Expenses: make([]Expense, 0, len(expenses))}
	for i := range expenses {
		resp.Expenses = append(resp.Expenses, expenseToWire(&expenses[i]))
	}
	return connect.NewResponse(resp), nil
}
