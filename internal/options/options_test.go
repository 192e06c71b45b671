package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Value int
	Name  string
	calls []string
}

var errNegative = errors.New("value cannot be negative")

func (tc *testConfig) Validate() error {
	if tc.Name == "" {
		return errors.New("name is required")
	}

	return nil
}

func withValue(v int) Option[*testConfig] {
	return New(func(c *testConfig) error {
		if v < 0 {
			return errNegative
		}
		c.Value = v
		c.calls = append(c.calls, "value")

		return nil
	})
}

func withName(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.Name = name
		c.calls = append(c.calls, "name")
	})
}

func TestApply_InOrder(t *testing.T) {
	cfg := &testConfig{}
	require.NoError(t, Apply(cfg, withName("a"), withValue(3), withName("b")))

	require.Equal(t, 3, cfg.Value)
	require.Equal(t, "b", cfg.Name)
	require.Equal(t, []string{"name", "value", "name"}, cfg.calls)
}

func TestApply_StopsAtError(t *testing.T) {
	cfg := &testConfig{}
	err := Apply(cfg, withValue(-1), withName("never"))

	require.ErrorIs(t, err, errNegative)
	require.Empty(t, cfg.Name)
}

func TestApply_SkipsNil(t *testing.T) {
	cfg := &testConfig{}
	require.NoError(t, Apply(cfg, nil, withValue(1)))
	require.Equal(t, 1, cfg.Value)
}

func TestBuild_Validates(t *testing.T) {
	cfg := &testConfig{}
	require.Error(t, Build(cfg, withValue(1)))

	cfg = &testConfig{}
	require.NoError(t, Build(cfg, withValue(1), withName("ok")))
}
