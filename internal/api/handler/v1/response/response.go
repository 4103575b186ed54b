package response

import (
	"time"

	"github.com/skarbek/skarbek-api/internal/domain"
)

type LoginResponse struct {
	Token string `json:"token"`
}

// ParentLoginResponse only carries require_password_change while the parent
// still has to replace the temporary password.
type ParentLoginResponse struct {
	Token                 string `json:"token"`
	RequirePasswordChange bool   `json:"require_password_change,omitempty"`
}

type PasswordChangedResponse struct {
	Token                 string `json:"token"`
	RequirePasswordChange bool   `json:"require_password_change"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ParentResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewParentResponse(p domain.Parent) ParentResponse {
	return ParentResponse{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
	}
}

type SubmittedContributionResponse struct {
	ID     uint                      `json:"id"`
	Status domain.ContributionStatus `json:"status"`
}

type ContributionStatusResponse struct {
	Status         string   `json:"status"`
	AmountExpected *float64 `json:"amount_expected,omitempty"`
	AmountPaid     *float64 `json:"amount_paid,omitempty"`
}

type CampaignSummary struct {
	ID           uint    `json:"id"`
	Title        string  `json:"title"`
	TargetAmount float64 `json:"target_amount"`
}

type OverviewContribution struct {
	ID             uint                      `json:"id"`
	ParentID       uint                      `json:"parent_id"`
	ParentEmail    string                    `json:"parent_email"`
	ParentName     string                    `json:"parent_name"`
	AmountExpected float64                   `json:"amount_expected"`
	AmountPaid     float64                   `json:"amount_paid"`
	Status         domain.ContributionStatus `json:"status"`
	PaidAt         *time.Time                `json:"paid_at"`
	Note           string                    `json:"note"`
}

type OverviewEntry struct {
	Campaign      CampaignSummary        `json:"campaign"`
	Contributions []OverviewContribution `json:"contributions"`
}

func NewOverview(groups []domain.CampaignContributions) []OverviewEntry {
	entries := make([]OverviewEntry, 0, len(groups))
	for _, g := range groups {
		entry := OverviewEntry{
			Campaign: CampaignSummary{
				ID:           g.Campaign.ID,
				Title:        g.Campaign.Title,
				TargetAmount: g.Campaign.TargetAmount,
			},
			Contributions: make([]OverviewContribution, 0, len(g.Contributions)),
		}
		for _, c := range g.Contributions {
			entry.Contributions = append(entry.Contributions, OverviewContribution{
				ID:             c.ID,
				ParentID:       c.ParentID,
				ParentEmail:    c.ParentEmail,
				ParentName:     c.ParentName,
				AmountExpected: c.AmountExpected,
				AmountPaid:     c.AmountPaid,
				Status:         c.Status,
				PaidAt:         c.PaidAt,
				Note:           c.Note,
			})
		}
		entries = append(entries, entry)
	}

	return entries
}


type RosterResponse struct {
	Campaign CampaignSummary    `json:"campaign"`
	Rows     []domain.RosterRow `json:"rows"`
}

func NewRosterResponse(r domain.Roster) RosterResponse {
	rows := r.Rows
	if rows == nil {
		rows = []domain.RosterRow{}
	}

	return RosterResponse{
		Campaign: CampaignSummary{
			ID:           r.Campaign.ID,
			Title:        r.Campaign.Title,
			TargetAmount: r.Campaign.TargetAmount,
		},
		Rows: rows,
	}
}
