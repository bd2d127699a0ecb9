package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artm-core/artm/internal/artm/artmerr"
)

func TestDefault_PassesValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidate_RejectsEmptyTopicNames(t *testing.T) {
	cfg := Default()
	cfg.TopicNames = nil
	assert.ErrorIs(t, cfg.Validate(), artmerr.InvalidArgument)
}

func TestValidate_RejectsDuplicateTopicNames(t *testing.T) {
	cfg := Default()
	cfg.TopicNames = []string{"a", "a"}
	assert.ErrorIs(t, cfg.Validate(), artmerr.InvalidArgument)
}

func TestValidate_RejectsSamePwtNwtName(t *testing.T) {
	cfg := Default()
	cfg.NwtName = cfg.PwtName
	assert.ErrorIs(t, cfg.Validate(), artmerr.InvalidArgument)
}

func TestLoad_ParsesYAMLAndAppliesEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master.yaml")
	yamlBody := "topic_names: [t0, t1, t2]\npwt_name: pwt\nnwt_name: nwt\nnum_processors: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	t.Setenv("ARTM_NUM_PROCESSORS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"t0", "t1", "t2"}, cfg.TopicNames)
	assert.Equal(t, 7, cfg.NumProcessors) // env override wins over file
}

func TestLoad_MissingFileReturnsDiskRead(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, artmerr.DiskRead)
}

func TestLoad_MalformedYAMLReturnsCorruptedMessage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topic_names: [unterminated"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, artmerr.CorruptedMessage)
}
