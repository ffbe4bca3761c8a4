package hospital

import (
	"context"

	"github.com/hoslink/hoslink/internal/errs"
)

// Service exposes facility lookups and the referral routing rules.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, name string) (*Hospital, error) {
	if name == "" {
		return nil, errs.Validationf("facility name is required")
	}
	return s.repo.GetByName(ctx, name)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ReferralTargets returns the facilities a referral may be sent to.
// Only the two referral hospitals accept inbound transfers.
func (s *Service) ReferralTargets(facility string) []string {
	return []string{JOOTRH, KisumuCounty}
}

// ReferralSources returns the facilities a user may refer from. Staff at
// the referral hospitals coordinate for the whole county and see every
// facility; staff elsewhere refer only from their own.
func (s *Service) ReferralSources(ctx context.Context, facility string) ([]string, error) {
	switch facility {
	case AllFacilities, JOOTRH, KisumuCounty:
		return s.repo.Names(ctx)
	default:
		return []string{facility}, nil
	}
}

func (s *Service) Seed(ctx context.Context) error {
	return Seed(ctx, s.repo)
}
