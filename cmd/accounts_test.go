package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gutenmorgen/gm/types"
)

// withFakeAPI points GlobalAppConfig at a stub origin for the duration
// of a test, with the cache disabled so nothing touches the real
// filesystem.
func withFakeAPI(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	saved := GlobalAppConfig
	t.Cleanup(func() { GlobalAppConfig = saved })
	GlobalAppConfig = types.AppConfig{
		API: types.APIConfig{
			Key:            "test-key",
			BaseURL:        srv.URL,
			TimeoutSeconds: 5,
		},
		Cache: types.CacheConfig{Disabled: true},
	}
}

func TestAccountsHappyPath(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("json", true)

	withFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/integrations/accounts/list", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"accounts":[{"id":"a1","integrationId":"google"}]}}`))
	})

	// Invoking RunE directly skips Execute, which is what normally seeds
	// the command context.
	accountsCmd.SetContext(context.Background())
	require.NoError(t, accountsCmd.RunE(accountsCmd, nil))
}

func TestAccountsWithoutAPIKey(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	saved := GlobalAppConfig
	t.Cleanup(func() { GlobalAppConfig = saved })
	GlobalAppConfig = types.AppConfig{}

	accountsCmd.SetContext(context.Background())
	err := accountsCmd.RunE(accountsCmd, nil)
	var cfgErr *types.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCacheStatsHappyPath(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("json", true)

	saved := GlobalAppConfig
	t.Cleanup(func() { GlobalAppConfig = saved })
	GlobalAppConfig = types.AppConfig{
		Cache: types.CacheConfig{Dir: t.TempDir()},
	}

	cacheStatsCmd.SetContext(context.Background())
	cacheClearCmd.SetContext(context.Background())
	require.NoError(t, cacheStatsCmd.RunE(cacheStatsCmd, nil))
	require.NoError(t, cacheClearCmd.RunE(cacheClearCmd, nil))
}
