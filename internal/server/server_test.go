package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsmart/internal/auth"
	"github.com/mmynk/splitsmart/internal/metrics"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/service"
	"github.com/mmynk/splitsmart/internal/storage/sqlite"
)

// setupTestServer starts an httptest server backed by a temporary SQLite database.
func setupTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	svc := service.NewLedgerService(store, service.WithMetrics(opts.Metrics))
	server := httptest.NewServer(New(svc, opts))

	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})
	return server
}

func call[Req, Res any](t *testing.T, server *httptest.Server, procedure string, msg *Req, token string) (*Res, error) {
	t.Helper()
	client := NewClient[Req, Res](http.DefaultClient, server.URL, procedure)
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// seedTrip registers Alice, Bob, Charlie and Diana and creates "Trip"
// without Diana.
func seedTrip(t *testing.T, server *httptest.Server, token string) {
	t.Helper()
	for _, name := range []string{"Alice", "Bob", "Charlie", "Diana"} {
		if _, err := call[AddUserRequest, AddUserResponse](t, server, AddUserProcedure, &AddUserRequest{Name: name}, token); err != nil {
			t.Fatalf("AddUser(%s) failed: %v", name, err)
		}
	}
	resp, err := call[CreateGroupRequest, CreateGroupResponse](t, server, CreateGroupProcedure, &CreateGroupRequest{
		Name:    "Trip",
		Members: []string{"Alice", "Bob", "Charlie", "Mallory"},
	}, token)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if len(resp.Skipped) != 1 || resp.Skipped[0] != "Mallory" {
		t.Errorf("skipped: expected [Mallory], got %v", resp.Skipped)
	}
	if len(resp.Group.Members) != 3 {
		t.Errorf("members: expected 3, got %v", resp.Group.Members)
	}
	if resp.Group.ID == "" {
		t.Error("expected non-empty group ID")
	}
}

func TestAddExpenseAndDebts(t *testing.T) {
	server := setupTestServer(t, Options{Currency: "₹"})
	seedTrip(t, server, "")

	resp, err := call[AddExpenseRequest, AddExpenseResponse](t, server, AddExpenseProcedure, &AddExpenseRequest{
		Group:        "Trip",
		Description:  "Dinner",
		Amount:       90,
		PaidBy:       "Alice",
		Participants: []string{"all"},
	}, "")
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if resp.Expense.SplitType != "equal" {
		t.Errorf("split: expected equal, got %s", resp.Expense.SplitType)
	}
	if resp.Expense.Shares["Bob"] != 30 {
		t.Errorf("Bob's share: expected 30, got %v", resp.Expense.Shares["Bob"])
	}

	want := []string{"Bob owes Alice ₹30.00", "Charlie owes Alice ₹30.00"}
	if len(resp.Debts) != len(want) {
		t.Fatalf("debts: expected %v, got %+v", want, resp.Debts)
	}
	for i, line := range want {
		if resp.Debts[i].Display != line {
			t.Errorf("debts[%d]: expected %q, got %q", i, line, resp.Debts[i].Display)
		}
	}

	settle, err := call[SettleUpRequest, SettleUpResponse](t, server, SettleUpProcedure, &SettleUpRequest{
		Group: "Trip", From: "Bob", To: "Alice", Amount: 30,
	}, "")
	if err != nil {
		t.Fatalf("SettleUp failed: %v", err)
	}
	if settle.SettlementID == "" {
		t.Error("expected non-empty settlement ID")
	}
	if len(settle.Debts) != 1 || settle.Debts[0].From != "Charlie" {
		t.Errorf("debts after settle: expected only Charlie, got %+v", settle.Debts)
	}

	debts, err := call[GetDebtsRequest, GetDebtsResponse](t, server, GetDebtsProcedure, &GetDebtsRequest{Group: "Trip"}, "")
	if err != nil {
		t.Fatalf("GetDebts failed: %v", err)
	}
	if len(debts.Debts) != 1 || debts.Debts[0].Amount != 30 {
		t.Errorf("GetDebts: expected Charlie owes 30, got %+v", debts.Debts)
	}

	balances, err := call[GetBalancesRequest, GetBalancesResponse](t, server, GetBalancesProcedure, &GetBalancesRequest{Group: "Trip"}, "")
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	wantNet := map[string]float64{"Alice": 30, "Bob": 0, "Charlie": -30}
	if len(balances.Balances) != 3 || balances.Balances[0].Member != "Alice" {
		t.Fatalf("balances: unexpected %+v", balances.Balances)
	}
	for _, b := range balances.Balances {
		if b.Net != wantNet[b.Member] {
			t.Errorf("%s net: expected %v, got %v", b.Member, wantNet[b.Member], b.Net)
		}
	}

	expenses, err := call[ListExpensesRequest, ListExpensesResponse](t, server, ListExpensesProcedure, &ListExpensesRequest{Group: "Trip"}, "")
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses.Expenses) != 1 || expenses.Expenses[0].Description != "Dinner" {
		t.Errorf("ListExpenses: unexpected %+v", expenses.Expenses)
	}
}

func TestGroupsAndUsers(t *testing.T) {
	server := setupTestServer(t, Options{})
	seedTrip(t, server, "")

	added, err := call[AddMembersRequest, AddMembersResponse](t, server, AddMembersProcedure, &AddMembersRequest{
		Group: "Trip", Members: []string{"Diana", "Alice"},
	}, "")
	if err != nil {
		t.Fatalf("AddMembers failed: %v", err)
	}
	if len(added.Group.Members) != 4 || added.Group.Members[3] != "Diana" {
		t.Errorf("members: expected Diana appended, got %v", added.Group.Members)
	}

	group, err := call[GetGroupRequest, GetGroupResponse](t, server, GetGroupProcedure, &GetGroupRequest{Name: "Trip"}, "")
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(group.Group.Members) != 4 {
		t.Errorf("GetGroup members: expected 4, got %v", group.Group.Members)
	}

	groups, err := call[ListGroupsRequest, ListGroupsResponse](t, server, ListGroupsProcedure, &ListGroupsRequest{}, "")
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups.Groups) != 1 {
		t.Errorf("ListGroups: expected 1 group, got %d", len(groups.Groups))
	}

	users, err := call[ListUsersRequest, ListUsersResponse](t, server, ListUsersProcedure, &ListUsersRequest{}, "")
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users.Users) != 4 {
		t.Errorf("ListUsers: expected 4 users, got %d", len(users.Users))
	}
}

func TestErrorCodes(t *testing.T) {
	server := setupTestServer(t, Options{})
	seedTrip(t, server, "")

	expense := func(mutate func(*AddExpenseRequest)) error {
		req := &AddExpenseRequest{Group: "Trip", Description: "Taxi", Amount: 60, PaidBy: "Alice", Participants: []string{"Alice", "Bob"}}
		mutate(req)
		_, err := call[AddExpenseRequest, AddExpenseResponse](t, server, AddExpenseProcedure, req, "")
		return err
	}

	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{
			name: "duplicate user",
			err: func() error {
				_, err := call[AddUserRequest, AddUserResponse](t, server, AddUserProcedure, &AddUserRequest{Name: "Alice"}, "")
				return err
			}(),
			want: connect.CodeAlreadyExists,
		},
		{
			name: "empty user name",
			err: func() error {
				_, err := call[AddUserRequest, AddUserResponse](t, server, AddUserProcedure, &AddUserRequest{Name: " "}, "")
				return err
			}(),
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unknown group",
			err: func() error {
				_, err := call[GetDebtsRequest, GetDebtsResponse](t, server, GetDebtsProcedure, &GetDebtsRequest{Group: "nope"}, "")
				return err
			}(),
			want: connect.CodeNotFound,
		},
		{
			name: "duplicate group",
			err: func() error {
				_, err := call[CreateGroupRequest, CreateGroupResponse](t, server, CreateGroupProcedure, &CreateGroupRequest{Name: "Trip"}, "")
				return err
			}(),
			want: connect.CodeAlreadyExists,
		},
		{
			name: "unknown split type",
			err:  expense(func(r *AddExpenseRequest) { r.Split = "weighted" }),
			want: connect.CodeInvalidArgument,
		},
		{
			name: "percentages not summing to 100",
			err: expense(func(r *AddExpenseRequest) {
				r.Split = "percent"
				r.Percentages = map[string]float64{"Alice": 50, "Bob": 40}
			}),
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unequal amounts not matching total",
			err: expense(func(r *AddExpenseRequest) {
				r.Split = "unequal"
				r.Amounts = map[string]float64{"Alice": 10, "Bob": 10}
			}),
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unregistered payer",
			err:  expense(func(r *AddExpenseRequest) { r.PaidBy = "Mallory" }),
			want: connect.CodeNotFound,
		},
		{
			name: "payer outside group",
			err:  expense(func(r *AddExpenseRequest) { r.PaidBy = "Diana" }),
			want: connect.CodeFailedPrecondition,
		},
		{
			name: "no known participants",
			err:  expense(func(r *AddExpenseRequest) { r.Participants = []string{"Mallory"} }),
			want: connect.CodeFailedPrecondition,
		},
		{
			name: "settle with non-member",
			err: func() error {
				_, err := call[SettleUpRequest, SettleUpResponse](t, server, SettleUpProcedure, &SettleUpRequest{Group: "Trip", From: "Diana", To: "Alice", Amount: 5}, "")
				return err
			}(),
			want: connect.CodeFailedPrecondition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("expected %v error, got nil", tt.want)
			}
			if got := connect.CodeOf(tt.err); got != tt.want {
				t.Errorf("code: expected %v, got %v (%v)", tt.want, got, tt.err)
			}
		})
	}

	// Rejected expenses leave the group untouched.
	debts, err := call[GetDebtsRequest, GetDebtsResponse](t, server, GetDebtsProcedure, &GetDebtsRequest{Group: "Trip"}, "")
	if err != nil {
		t.Fatalf("GetDebts failed: %v", err)
	}
	if len(debts.Debts) != 0 {
		t.Errorf("expected no debts, got %+v", debts.Debts)
	}
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	server := setupTestServer(t, Options{JWT: jwtManager, RequireAuth: true})

	_, err := call[ListUsersRequest, ListUsersResponse](t, server, ListUsersProcedure, &ListUsersRequest{}, "")
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected Unauthenticated without token, got %v", err)
	}

	token, err := jwtManager.Generate(&models.User{Name: "Alice"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	seedTrip(t, server, token)

	_, err = call[SettleUpRequest, SettleUpResponse](t, server, SettleUpProcedure, &SettleUpRequest{
		Group: "Trip", From: "Bob", To: "Alice", Amount: 10, Note: "cash",
	}, token)
	if err != nil {
		t.Fatalf("SettleUp with token failed: %v", err)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, Options{Metrics: metrics.New()})
	seedTrip(t, server, "")

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	want := `splitsmart_rpc_requests_total{code="ok",procedure="` + AddUserProcedure + `"} 4`
	if !strings.Contains(string(body), want) {
		t.Errorf("expected %q in metrics output", want)
	}
}

func TestHealthAndCORS(t *testing.T) {
	server := setupTestServer(t, Options{})

	req, _ := http.NewRequest(http.MethodOptions, server.URL+GetDebtsProcedure, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight: unexpected status %d, headers %v", resp.StatusCode, resp.Header)
	}

	resp, err = http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz: expected 200, got %d", resp.StatusCode)
	}
}

func TestCodecSpeaksPlainJSONOnly(t *testing.T) {
	server := setupTestServer(t, Options{})

	resp, err := http.Post(server.URL+AddUserProcedure, "application/json",
		strings.NewReader(`{"name":"Erin","email":"erin@example.com"}`))
	if err != nil {
		t.Fatalf("POST json failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("json: expected 200, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"user":{"name":"Erin"`) {
		t.Errorf("json: unexpected body %s", body)
	}

	// No protobuf codec is registered.
	resp, err = http.Post(server.URL+AddUserProcedure, "application/proto", strings.NewReader("\n\x04Erin"))
	if err != nil {
		t.Fatalf("POST proto failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("proto: expected 415, got %d", resp.StatusCode)
	}
}
