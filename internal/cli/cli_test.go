package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/linkedtrust/claimsign/internal/model"
)

func TestRegisterDefaults(t *testing.T) {
	v := viper.New()
	require.NoError(t, registerDefaults(v, model.DefaultConfig()))

	assert.Equal(t, "local_did", v.GetString("signing.did"))
	assert.Equal(t, 30*time.Second, v.GetDuration("remote.timeout"))
	assert.Equal(t, []string{"w3.org"}, v.GetStringSlice("contexts.trusted"))
	assert.True(t, v.IsSet("remote.https_proxy"))

	var cfg model.Config
	require.NoError(t, v.Unmarshal(&cfg))
	want := model.DefaultConfig()
	assert.Equal(t, want.Signing, cfg.Signing)
	assert.Equal(t, want.Remote, cfg.Remote)
	assert.Equal(t, want.Cache, cfg.Cache)
	assert.Equal(t, want.Batch, cfg.Batch)
	assert.Equal(t, want.Contexts.Trusted, cfg.Contexts.Trusted)
	assert.Empty(t, cfg.Contexts.TrustedDomains)
}

func TestRegisterDefaults_EnvOverride(t *testing.T) {
	t.Setenv("CLAIMSIGN_SIGNING_DID", "issuer")
	t.Setenv("CLAIMSIGN_REMOTE_ENABLED", "true")

	v := viper.New()
	require.NoError(t, registerDefaults(v, model.DefaultConfig()))
	v.SetEnvPrefix("CLAIMSIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := model.DefaultConfig()
	require.NoError(t, v.Unmarshal(cfg))
	assert.Equal(t, "issuer", cfg.Signing.DID)
	assert.True(t, cfg.Remote.Enabled)
	assert.Equal(t, model.CryptosuiteEdDSARDFC, cfg.Signing.Cryptosuite)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# claimsign configuration file"))

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	want := model.DefaultConfig()
	assert.Equal(t, want.Signing, cfg.Signing)
	assert.Equal(t, want.Remote, cfg.Remote)
	assert.Equal(t, want.Cache, cfg.Cache)
	assert.Equal(t, want.Template, cfg.Template)

	assert.Error(t, writeDefaultConfig(path), "existing config must not be overwritten")
}

func TestSignFlagsApply(t *testing.T) {
	var f signFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)

	require.NoError(t, cmd.Flags().Parse([]string{
		"--did", "issuer",
		"--no-resolve",
		"--trust", "w3id.org", "--trust", "w3.org",
		"--no-cache",
	}))

	cfg := model.DefaultConfig()
	f.apply(cmd, cfg)

	assert.Equal(t, "issuer", cfg.Signing.DID)
	assert.False(t, cfg.Contexts.Resolve)
	assert.Equal(t, []string{"w3id.org", "w3.org"}, cfg.Contexts.Trusted)
	assert.False(t, cfg.Cache.Enabled)

	// Unset flags keep config values
	assert.Equal(t, model.CryptosuiteEdDSARDFC, cfg.Signing.Cryptosuite)
	assert.False(t, cfg.Remote.Enabled)
}

func TestClaimFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.JSON", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	files, err := claimFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.JSON"), filepath.Join(dir, "b.json")}, files)

	_, err = claimFiles(filepath.Join(dir, "absent"))
	assert.Error(t, err)
}
