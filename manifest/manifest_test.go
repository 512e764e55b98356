package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderRoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := NewRecorder("bootstrapp 1.0.0", "com.example.app", "2.0.0", now)

	rec.RecordRendered("README.md", []byte("# MyApp\n"))
	sum := sha256.Sum256([]byte{0x01, 0x02})
	rec.Record("assets/logo.png", ActionCopied, sum[:], 2)
	require.Equal(t, 2, rec.Len())

	dir := t.TempDir()
	require.NoError(t, rec.Write(dir))

	m, err := Read(dir)
	require.NoError(t, err)

	_, err = uuid.Parse(m.RunID)
	assert.NoError(t, err, "run id must be a uuid")
	assert.WithinDuration(t, now, m.Generated, 0)
	assert.Equal(t, "bootstrapp 1.0.0", m.Generator)
	assert.Equal(t, "com.example.app", m.TemplateID)
	assert.Equal(t, "2.0.0", m.TemplateVersion)
	assert.Equal(t, dir, m.OutputRoot)

	require.Len(t, m.Entries, 2)
	assert.Equal(t, "README.md", m.Entries[0].Path)
	assert.Equal(t, ActionRendered, m.Entries[0].Action)
	want := sha256.Sum256([]byte("# MyApp\n"))
	assert.Equal(t, hex.EncodeToString(want[:]), m.Entries[0].Hash)
	assert.Equal(t, int64(8), m.Entries[0].Size)

	assert.Equal(t, "assets/logo.png", m.Entries[1].Path)
	assert.Equal(t, ActionCopied, m.Entries[1].Action)
}

func TestRecorderRunIDsAreUnique(t *testing.T) {
	now := time.Now()
	a := NewRecorder("g", "id", "v", now)
	b := NewRecorder("g", "id", "v", now)
	assert.NotEqual(t, a.m.RunID, b.m.RunID)
}

func TestReadMissingManifest(t *testing.T) {
	_, err := Read(t.TempDir())
	assert.Error(t, err)
}
