// Package api defines the request and response records of the settleup.v1
// RPC services. Monetary values and percentages travel as decimal strings
// ("12.34") so clients never round through floating point.
package api

type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"`
}

type Group struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"memberIds"`
	CreatedAt int64   `json:"createdAt"`
}

type Split struct {
	ID        int64  `json:"id"`
	ExpenseID int64  `json:"expenseId"`
	GroupID   int64  `json:"groupId"`
	UserID    int64  `json:"userId"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

type Expense struct {
	ID          int64    `json:"id"`
	GroupID     int64    `json:"groupId"`
	PaidByID    int64    `json:"paidById"`
	Amount      string   `json:"amount"`
	Description string   `json:"description"`
	SplitType   string   `json:"splitType"`
	CreatedAt   int64    `json:"createdAt"`
	Splits      []*Split `json:"splits"`
}

// SplitInput is one participant of a new expense. Percentage is read for
// PERCENTAGE splits and Amount for CUSTOM splits; EQUAL splits need neither.
type SplitInput struct {
	UserID     int64  `json:"userId"`
	Percentage string `json:"percentage,omitempty"`
	Amount     string `json:"amount,omitempty"`
}

// ExpenseService

type AddExpenseRequest struct {
	GroupID     int64         `json:"groupId"`
	PaidByID    int64         `json:"paidById"`
	Amount      string        `json:"amount"`
	Description string        `json:"description"`
	SplitType   string        `json:"splitType"`
	Splits      []*SplitInput `json:"splits"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// AddGroupExpenseRequest splits Amount equally among every group member.
type AddGroupExpenseRequest struct {
	GroupID     int64  `json:"groupId"`
	PaidByID    int64  `json:"paidById"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type AddGroupExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID int64 `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// ListExpensesRequest lists every expense, or one group's when GroupID is set.
type ListExpensesRequest struct {
	GroupID int64 `json:"groupId,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID int64 `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

// SplitService

type GetSplitRequest struct {
	SplitID int64 `json:"splitId"`
}

type GetSplitResponse struct {
	Split *Split `json:"split"`
}

type MarkSplitPaidRequest struct {
	SplitID int64 `json:"splitId"`
}

type MarkSplitPaidResponse struct {
	Split *Split `json:"split"`
}

type MarkSplitSettledRequest struct {
	SplitID int64 `json:"splitId"`
}

type MarkSplitSettledResponse struct {
	Split *Split `json:"split"`
}

type ListSplitsByUserRequest struct {
	UserID int64 `json:"userId"`
}

type ListSplitsByUserResponse struct {
	Splits []*Split `json:"splits"`
}

type ListSplitsByExpenseRequest struct {
	ExpenseID int64 `json:"expenseId"`
}

type ListSplitsByExpenseResponse struct {
	Splits []*Split `json:"splits"`
}

type GetTotalOwedRequest struct {
	UserID int64 `json:"userId"`
}

type GetTotalOwedResponse struct {
	UserID int64  `json:"userId"`
	Total  string `json:"total"`
}

type GetGroupBalanceRequest struct {
	UserID  int64 `json:"userId"`
	GroupID int64 `json:"groupId"`
}

type GetGroupBalanceResponse struct {
	UserID  int64  `json:"userId"`
	GroupID int64  `json:"groupId"`
	Balance string `json:"balance"`
}

type ListPendingSplitsRequest struct {
	GroupID int64 `json:"groupId"`
}

type ListPendingSplitsResponse struct {
	Splits []*Split `json:"splits"`
}

type GetGroupSummaryRequest struct {
	GroupID int64 `json:"groupId"`
}

type UserAmount struct {
	UserID int64  `json:"userId"`
	Amount string `json:"amount"`
}

// MemberBalance is a member's position with payer shares netted out.
// Net is signed: positive means the member is owed money.
type MemberBalance struct {
	UserID int64  `json:"userId"`
	Paid   string `json:"paid"`
	Owed   string `json:"owed"`
	Net    string `json:"net"`
}

type Transfer struct {
	FromUserID int64  `json:"fromUserId"`
	ToUserID   int64  `json:"toUserId"`
	Amount     string `json:"amount"`
}

type GetGroupSummaryResponse struct {
	GroupID   int64            `json:"groupId"`
	Owed      []*UserAmount    `json:"owed"`
	Members   []*MemberBalance `json:"members"`
	Transfers []*Transfer      `json:"transfers"`
}

// GroupService

type CreateGroupRequest struct {
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"memberIds"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID int64 `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID int64 `json:"groupId"`
	UserID  int64 `json:"userId"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID int64 `json:"groupId"`
}

type DeleteGroupResponse struct{}

// UserService

type GetUserRequest struct {
	UserID int64 `json:"userId"`
}

type GetUserResponse struct {
	User *User `json:"user"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

// AuthService

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}
