package farol

import (
	"context"
	"fmt"
)

const ProfilePath = "/profile/me"

type Profile struct {
	ID                    int    `json:"id"`
	UserID                int    `json:"user_id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	Phone                 string `json:"phone,omitempty"`
	Bio                   string `json:"bio,omitempty"`
	Location              string `json:"location,omitempty"`
	LinkedInURL           string `json:"linkedin_url,omitempty"`
	GitHubURL             string `json:"github_url,omitempty"`
	PortfolioURL          string `json:"portfolio_url,omitempty"`
	HasDisability         bool   `json:"has_disability"`
	DisabilityType        string `json:"disability_type,omitempty"`
	DisabilityDescription string `json:"disability_description,omitempty"`
	AccessibilityNeeds    string `json:"accessibility_needs,omitempty"`
	ExperienceSummary     string `json:"experience_summary,omitempty"`
	CreatedAt             string `json:"created_at,omitempty"`
	UpdatedAt             string `json:"updated_at,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (p *Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// GetMyProfile returns the candidate profile of the authenticated user.
// Users without a candidate profile get an error matching ErrNotFound or ErrForbidden.
func (c *Client) GetMyProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.getJSON(ctx, c.endpoint(ProfilePath), nil, &profile); err != nil {
		return nil, fmt.Errorf("get my profile: %w", err)
	}

	return &profile, nil
}
