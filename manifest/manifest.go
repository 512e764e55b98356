// Package manifest records what a run wrote into the output tree. The
// manifest lands next to the generated files and lets a reader audit where
// an output came from and whether it was edited since.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/write"
)

// FileName is the manifest file written at the output root.
const FileName = ".bootstrapp-manifest.json"

// Action says how an output file was produced.
type Action string

const (
	// ActionRendered marks a file produced by template rendering.
	ActionRendered Action = "rendered"
	// ActionCopied marks a file copied byte for byte from the bundle.
	ActionCopied Action = "copied"
)

// Entry describes one written file.
type Entry struct {
	Path   string `json:"path"` // slash-separated, relative to the output root
	Action Action `json:"action"`
	Hash   string `json:"hash"` // sha256 of the written bytes
	Size   int64  `json:"size"`
}

// Manifest is the on-disk record of one run.
type Manifest struct {
	RunID           string    `json:"runId"`
	Generated       time.Time `json:"generated"`
	Generator       string    `json:"generator"`
	TemplateID      string    `json:"templateId"`
	TemplateVersion string    `json:"templateVersion"`
	OutputRoot      string    `json:"outputRoot"`
	Entries         []Entry   `json:"entries"`
}

// Recorder accumulates entries during a run, in write order.
type Recorder struct {
	m Manifest
}

// NewRecorder starts a manifest for one run.
func NewRecorder(generator, templateID, templateVersion string, now time.Time) *Recorder {
	return &Recorder{m: Manifest{
		RunID:           uuid.NewString(),
		Generated:       now.UTC(),
		Generator:       generator,
		TemplateID:      templateID,
		TemplateVersion: templateVersion,
	}}
}

// Record adds one entry. sum is the sha256 of the written bytes.
func (r *Recorder) Record(path string, action Action, sum []byte, size int64) {
	r.m.Entries = append(r.m.Entries, Entry{
		Path:   path,
		Action: action,
		Hash:   hex.EncodeToString(sum),
		Size:   size,
	})
}

// RecordRendered adds an entry for rendered content, hashing it here.
func (r *Recorder) RecordRendered(path string, data []byte) {
	sum := sha256.Sum256(data)
	r.Record(path, ActionRendered, sum[:], int64(len(data)))
}

// RunID returns the run's unique id.
func (r *Recorder) RunID() string {
	return r.m.RunID
}

// Len reports the number of recorded entries.
func (r *Recorder) Len() int {
	return len(r.m.Entries)
}

// Write finalizes the manifest and writes it into outputRoot.
func (r *Recorder) Write(outputRoot string) error {
	r.m.OutputRoot = outputRoot

	data, err := json.MarshalIndent(&r.m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "encoding manifest")
	}
	data = append(data, '\n')

	return write.File(filepath.Join(outputRoot, FileName), data, write.Options{Atomic: true})
}

// Read loads the manifest from outputRoot.
func Read(outputRoot string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(outputRoot, FileName))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "reading manifest in %s", outputRoot)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "decoding manifest")
	}
	return &m, nil
}
