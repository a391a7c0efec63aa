package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Malinda-kawshalya/issue-web/internal/domain"
)

func TestAllowAllPolicy(t *testing.T) {
	owner := &domain.User{ID: primitive.NewObjectID(), Role: domain.UserRoleUser}
	other := &domain.User{ID: primitive.NewObjectID(), Role: domain.UserRoleUser}
	issue := &domain.Issue{ID: primitive.NewObjectID(), Author: owner.ID}

	policy := AllowAllPolicy{}
	assert.True(t, policy.CanMutate(owner, issue))
	assert.True(t, policy.CanMutate(other, issue))
	assert.False(t, policy.CanMutate(nil, issue))
	assert.False(t, policy.CanMutate(owner, nil))
}

func TestOwnerOrAdminPolicy(t *testing.T) {
	owner := &domain.User{ID: primitive.NewObjectID(), Role: domain.UserRoleUser}
	other := &domain.User{ID: primitive.NewObjectID(), Role: domain.UserRoleUser}
	admin := &domain.User{ID: primitive.NewObjectID(), Role: domain.UserRoleAdmin}
	issue := &domain.Issue{ID: primitive.NewObjectID(), Author: owner.ID}

	policy := OwnerOrAdminPolicy{}
	assert.True(t, policy.CanMutate(owner, issue))
	assert.True(t, policy.CanMutate(admin, issue))
	assert.False(t, policy.CanMutate(other, issue))
	assert.False(t, policy.CanMutate(nil, issue))
}
