package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLauncher string

func (s staticLauncher) StartGame(ctx context.Context, req LaunchRequest) (string, error) {
	return string(s) + "?u=" + req.UserCode, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("SBO", staticLauncher("https://sbo"))

	l, err := r.Get(" sbo ")
	require.NoError(t, err)
	url, err := l.StartGame(context.Background(), LaunchRequest{UserCode: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "https://sbo?u=p1", url)

	_, err = r.Get("saba")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestThirdParty(t *testing.T) {
	err := ThirdParty("sbo.GetBetDetail", assert.AnError)
	assert.ErrorIs(t, err, ErrThirdParty)
	assert.Contains(t, err.Error(), assert.AnError.Error())
}
