package service

import "github.com/Malinda-kawshalya/issue-web/internal/domain"

// MutationPolicy decides whether the acting user may update or delete an
// issue. It is pluggable so the permissive default and a stricter ownership
// rule can be swapped without touching the service.
type MutationPolicy interface {
	CanMutate(actor *domain.User, issue *domain.Issue) bool
}

// AllowAllPolicy permits any authenticated user to mutate any issue. This is
// the default behavior of the product.
type AllowAllPolicy struct{}

func (AllowAllPolicy) CanMutate(actor *domain.User, issue *domain.Issue) bool {
	return actor != nil && issue != nil
}

// OwnerOrAdminPolicy restricts mutation to the issue author or an admin.
type OwnerOrAdminPolicy struct{}

func (OwnerOrAdminPolicy) CanMutate(actor *domain.User, issue *domain.Issue) bool {
	if actor == nil || issue == nil {
		return false
	}
	return actor.IsAdmin() || actor.ID == issue.Author
}
