package domain

type RosterRow struct {
	ParentID     uint          `json:"parent_id"`
	ParentName   string        `json:"parent_name"`
	ParentEmail  string        `json:"parent_email"`
	Contribution *Contribution `json:"contribution"`
}

type Roster struct {
	Campaign Campaign    `json:"campaign"`
	Rows     []RosterRow `json:"rows"`
}

// CampaignContributions groups the contributions of one campaign with the
// identity of each contributing parent.
type CampaignContributions struct {
	Campaign      Campaign
	Contributions []ContributionWithParent
}

type ContributionWithParent struct {
	Contribution
	ParentName  string
	ParentEmail string
}

// ParentCampaign is a campaign seen by one parent, with that parent's
// contribution when one exists.
type ParentCampaign struct {
	Campaign     Campaign      `json:"campaign"`
	Contribution *Contribution `json:"contribution"`
}
