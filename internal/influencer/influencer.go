// Package influencer manages influencer profiles for the Kollabary marketplace.
//
// A profile is created when a user adopts the influencer role. It carries the
// public card data (niche, platforms, followers) plus the ranking fields
// (rankingScore, rankingTier, avgRating, totalReviews) that the ranking engine
// maintains. Profiles are never deleted by this package.
package influencer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Errors
var (
	ErrProfileNotFound = errors.New("influencer profile not found")
	ErrInvalidProfile  = errors.New("invalid profile data")
)

// Availability represents whether an influencer is taking new collaborations.
type Availability string

const (
	AvailabilityOpen   Availability = "OPEN"
	AvailabilityBusy   Availability = "BUSY"
	AvailabilityClosed Availability = "CLOSED"
)

// PlatformKind identifies a known social platform.
type PlatformKind string

const (
	PlatformInstagram PlatformKind = "instagram"
	PlatformTikTok    PlatformKind = "tiktok"
	PlatformYouTube   PlatformKind = "youtube"
	PlatformTwitch    PlatformKind = "twitch"
	PlatformOther     PlatformKind = "other"
)

// Platform is one social media presence. Known kinds carry a handle and
// follower count; PlatformOther falls back to a URL plus a free-form map.
type Platform struct {
	Kind      PlatformKind      `json:"kind"`
	Handle    string            `json:"handle,omitempty"`
	Followers int64             `json:"followers,omitempty"`
	URL       string            `json:"url,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Validate checks a platform entry at the API boundary.
func (p Platform) Validate() error {
	switch p.Kind {
	case PlatformInstagram, PlatformTikTok, PlatformYouTube, PlatformTwitch:
		if p.Handle == "" {
			return fmt.Errorf("%w: %s platform requires a handle", ErrInvalidProfile, p.Kind)
		}
	case PlatformOther:
		if p.URL == "" {
			return fmt.Errorf("%w: other platform requires a url", ErrInvalidProfile)
		}
	default:
		return fmt.Errorf("%w: unknown platform kind %q", ErrInvalidProfile, p.Kind)
	}
	if p.Followers < 0 {
		return fmt.Errorf("%w: followers cannot be negative", ErrInvalidProfile)
	}
	return nil
}

// Profile is an influencer's public profile plus ranking state.
type Profile struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	Niche              string     `json:"niche,omitempty"`
	Platforms          []Platform `json:"platforms,omitempty"`
	FollowersCount     int64      `json:"followersCount"`
	EngagementRate     float64    `json:"engagementRate"`
	CollaborationTypes []string   `json:"collaborationTypes,omitempty"`
	Availability       string     `json:"availability"`
	AvgRating          float64    `json:"avgRating"`
	TotalReviews       int        `json:"totalReviews"`
	RankingScore       float64    `json:"rankingScore"`
	RankingTier        string     `json:"rankingTier,omitempty"`
	Verified           bool       `json:"verified"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// SearchQuery filters the influencer directory.
type SearchQuery struct {
	Niche        string
	Platform     string
	MinFollowers int64
	Page         int
	Limit        int
}

// SearchResult is one page of the directory, ordered by ranking score.
type SearchResult struct {
	Items []*Profile `json:"items"`
	Meta  PageMeta   `json:"meta"`
}

// PageMeta describes pagination state.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Store persists influencer profiles.
type Store interface {
	Create(ctx context.Context, p *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	GetByID(ctx context.Context, id string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	// UpdateRanking writes only the ranking-engine-owned fields.
	UpdateRanking(ctx context.Context, userID string, score float64, tier string, avgRating float64, totalReviews int) (*Profile, error)
	// UpdateRatingStats writes only the review aggregate fields.
	UpdateRatingStats(ctx context.Context, userID string, avgRating float64, totalReviews int) error
	SetVerified(ctx context.Context, userID string, verified bool) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	Search(ctx context.Context, q SearchQuery) ([]*Profile, int, error)
}

// SaveProfileRequest is the request body for PUT /v1/influencers/me.
type SaveProfileRequest struct {
	Niche              string     `json:"niche"`
	Platforms          []Platform `json:"platforms"`
	FollowersCount     int64      `json:"followersCount"`
	EngagementRate     float64    `json:"engagementRate"`
	CollaborationTypes []string   `json:"collaborationTypes"`
	Availability       string     `json:"availability"`
}

// Validate checks the save request at the API boundary.
func (r SaveProfileRequest) Validate() error {
	if r.FollowersCount < 0 {
		return fmt.Errorf("%w: followersCount cannot be negative", ErrInvalidProfile)
	}
	if r.EngagementRate < 0 || r.EngagementRate > 100 {
		return fmt.Errorf("%w: engagementRate must be between 0 and 100", ErrInvalidProfile)
	}
	switch Availability(r.Availability) {
	case "", AvailabilityOpen, AvailabilityBusy, AvailabilityClosed:
	default:
		return fmt.Errorf("%w: invalid availability %q", ErrInvalidProfile, r.Availability)
	}
	for _, p := range r.Platforms {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
