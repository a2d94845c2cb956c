package main

import (
	"bytes"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typist/internal/config"
	"github.com/verte-zerg/typist/internal/model"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	_, err := toml.Decode(defaultConfigTemplate(), &cfg)
	require.NoError(t, err)
	assert.Nil(t, cfg.Server.Addr)
}

func TestValidateConfig(t *testing.T) {
	ok := model.Config{Words: 10, CapsPct: 0.5, PunctPct: 0.1}
	assert.NoError(t, validateConfig(ok))

	bad := ok
	bad.Words = 0
	assert.Error(t, validateConfig(bad))
	bad = ok
	bad.CapsPct = 2
	assert.Error(t, validateConfig(bad))
	bad = ok
	bad.WeakWindow = -1
	assert.Error(t, validateConfig(bad))
}

func TestApplyConfigRespectsFlags(t *testing.T) {
	cmd := newServeCmd()
	require.NoError(t, cmd.Flags().Set("words", "40"))

	words := 40
	fromFile := 10
	applyIntConfig(cmd, "words", &words, &fromFile)
	assert.Equal(t, 40, words)

	lang := "en"
	fileLang := "de"
	applyStringConfig(cmd, "lang", &lang, &fileLang)
	assert.Equal(t, "de", lang)
}

func TestLangsIncludesBuiltin(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"langs"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "en\n", out.String())
}
