package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	require.NoError(t, LoadFrom(t.TempDir()))

	assert.Equal(t, "5000", Port)
	assert.Equal(t, 5, SampleStride)
	assert.Equal(t, 0, TargetClass)
	assert.Equal(t, 0.5, DefaultThresh)
	assert.Equal(t, "static/uploads", UploadDir)
	assert.Equal(t, 12*time.Hour, SessionTTL)
	require.Len(t, Users, 2)
	assert.Equal(t, "user1", Users[0].Username)
	assert.Equal(t, "admin", Users[1].Role)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: "9000"
model:
  sample_stride: 10
auth:
  users:
    - username: ops
      password: secret
      role: admin
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("VDS_AWS_S3_BUCKET", "vds-archive")

	require.NoError(t, LoadFrom(dir))

	assert.Equal(t, "9000", Port)
	assert.Equal(t, 10, SampleStride)
	assert.Equal(t, "vds-archive", S3Bucket)
	require.Len(t, Users, 1)
	assert.Equal(t, SeedUser{Username: "ops", Password: "secret", Role: "admin"}, Users[0])
}

func TestLoadFromMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o644))

	assert.Error(t, LoadFrom(dir))
}
