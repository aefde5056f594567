package cmd

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/chainreact/config"
	"github.com/s0up4200/chainreact/filter"
)

func withFilterConfig(t *testing.T, defaultExpression string, presets map[string]string) {
	t.Helper()

	prevCfg, prevFilters, prevLogger := cfg, filters, logger
	t.Cleanup(func() { cfg, filters, logger = prevCfg, prevFilters, prevLogger })

	cfg = &config.Config{Filter: config.FilterConfig{DefaultExpression: defaultExpression, Presets: presets}}
	filters = filter.NewManager()
	require.NoError(t, filters.RegisterFilters(presets))
	logger = zerolog.Nop()
}

func TestResolveFilter(t *testing.T) {
	withFilterConfig(t, `Status == "active"`, map[string]string{"stale": "daysSince(UpdatedAt) > 90"})

	tests := []struct {
		name       string
		preset     string
		expression string
		useDefault bool
		want       string
	}{
		{name: "default expression", useDefault: true, want: `Status == "active"`},
		{name: "default skipped", useDefault: false, want: ""},
		{name: "expression wins", expression: `Name == "x"`, useDefault: true, want: `Name == "x"`},
		{name: "preset wins", preset: "stale", useDefault: true, want: "daysSince(UpdatedAt) > 90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := resolveFilter(tt.preset, tt.expression, tt.useDefault)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, f)
				return
			}
			require.NotNil(t, f)
			assert.Equal(t, tt.want, f.Expression())
		})
	}

	_, err := resolveFilter("missing", "", true)
	assert.ErrorContains(t, err, "not found")
}

func TestPageRequested(t *testing.T) {
	newListCommand := func(args ...string) *cobra.Command {
		c := &cobra.Command{Use: "list"}
		c.Flags().IntVar(&listPage, "page", 1, "")
		c.Flags().IntVar(&listLimit, "limit", 0, "")
		c.Flags().BoolVarP(&listAll, "all", "a", false, "")
		require.NoError(t, c.ParseFlags(args))
		return c
	}

	assert.False(t, pageRequested(newListCommand()))
	assert.False(t, pageRequested(newListCommand("--all")))
	assert.True(t, pageRequested(newListCommand("--page", "2")))
	assert.True(t, pageRequested(newListCommand("--limit", "5")))
}
