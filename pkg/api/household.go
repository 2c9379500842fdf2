package api

type Household struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"invite_code"`
	CreatedAt  int64  `json:"created_at"`
}

// Member is a user's membership in a household. Entries and payments refer
// to members by member ID.
type Member struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

type GetHouseholdRequest struct{}

type GetHouseholdResponse struct {
	Household *Household `json:"household"`
	Members   []*Member  `json:"members"`
}

type CreateHouseholdRequest struct {
	Name string `json:"name"`
}

type CreateHouseholdResponse struct {
	Household *Household `json:"household"`
	Member    *Member    `json:"member"`
}

type JoinHouseholdRequest struct {
	InviteCode string `json:"invite_code"`
}

type JoinHouseholdResponse struct {
	Household *Household `json:"household"`
	Member    *Member    `json:"member"`
}

type ListMembersRequest struct{}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}
