package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wansing/vantage/core"
)

func TestResolveRoute(t *testing.T) {

	var s = New(&core.CoreDB{})

	href, err := s.ResolveRoute("home", nil)
	assert.NoError(t, err)
	assert.Equal(t, "/", href)

	href, err = s.ResolveRoute("article", map[string]string{"slug": "imprint"})
	assert.NoError(t, err)
	assert.Equal(t, "/article/imprint", href)

	// extra parameters are ignored
	href, err = s.ResolveRoute("login", map[string]string{"username": "alice"})
	assert.NoError(t, err)
	assert.Equal(t, "/backend/login", href)

	_, err = s.ResolveRoute("article", nil)
	assert.Error(t, err)

	_, err = s.ResolveRoute("no-such-route", nil)
	assert.Error(t, err)
}
