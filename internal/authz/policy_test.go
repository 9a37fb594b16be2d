package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerPolicy_Decide(t *testing.T) {
	p := OwnerPolicy{}

	assert.Equal(t, Granted, p.Decide(7, 7))
	assert.Equal(t, Denied, p.Decide(7, 8))
	assert.Equal(t, Denied, p.Decide(8, 7))
	assert.Equal(t, Denied, p.Decide(0, 0), "anonymous never owns anything")
}

func TestCanAccess_OtherOwnerAlwaysDenied(t *testing.T) {
	p := OwnerPolicy{}
	for actor := Identity(1); actor <= 20; actor++ {
		for owner := Identity(1); owner <= 20; owner++ {
			if actor == owner {
				continue
			}
			assert.False(t, CanAccess(p, actor, owner), "actor %d owner %d", actor, owner)
		}
	}
}

func TestRequire(t *testing.T) {
	p := OwnerPolicy{}
	assert.NoError(t, Require(p, 3, 3))
	assert.ErrorIs(t, Require(p, 3, 4), ErrNotFoundOrForbidden)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "granted", Granted.String())
	assert.Equal(t, "denied", Denied.String())
}
