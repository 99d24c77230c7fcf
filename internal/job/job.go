// Package job stores conversion jobs: the output columns and block length
// used for one kind of measurement log, kept as a YAML file.
package job

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/logcompose/internal/rule"
	"github.com/KaramelBytes/logcompose/internal/utils"
)

// Job describes how to convert one measurement log.
type Job struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Input       string            `yaml:"input,omitempty"`
	Output      string            `yaml:"output,omitempty"`
	BlockLength int               `yaml:"block_length,omitempty"`
	Delimiter   string            `yaml:"input_delimiter,omitempty"`
	Encoding    string            `yaml:"input_encoding,omitempty"`
	HeaderEnd   string            `yaml:"header_end_pattern,omitempty"`
	Columns     []rule.ColumnSpec `yaml:"columns"`
	CreatedAt   time.Time         `yaml:"created_at"`
	UpdatedAt   time.Time         `yaml:"updated_at"`

	// Not serialized: on-disk location of the job file
	path string `yaml:"-"`
}

// New constructs an in-memory job. Call Save to persist.
func New(name, description string) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Load reads a job file.
func Load(path string) (*Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("job not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read job: %w", err)
	}
	var j Job
	if err := yaml.Unmarshal(b, &j); err != nil {
		return nil, fmt.Errorf("parse job %s: %w", path, err)
	}
	j.path = path
	return &j, nil
}

// Path returns the file the job was loaded from or last saved to.
func (j *Job) Path() string { return j.path }

// Save writes the job to path using an atomic write. An empty path reuses the
// path the job was loaded from.
func (j *Job) Save(path string) error {
	if path == "" {
		path = j.path
	}
	if path == "" {
		return errors.New("job path not set")
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	j.UpdatedAt = time.Now()
	data, err := yaml.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return err
	}
	j.path = path
	return nil
}

// AddColumn appends an output column.
func (j *Job) AddColumn(spec rule.ColumnSpec) {
	j.Columns = append(j.Columns, spec)
	j.UpdatedAt = time.Now()
}

// InputPath resolves the input log. Relative paths are taken relative to the
// job file; without an input the job file's name with a .txt extension is used.
func (j *Job) InputPath() string {
	if j.Input == "" {
		base := strings.TrimSuffix(j.path, filepath.Ext(j.path))
		return base + ".txt"
	}
	return j.resolve(j.Input)
}

// OutputPath resolves the output file. Without an explicit output the input
// name with prefix prepended is used, in the input's directory.
func (j *Job) OutputPath(prefix string) string {
	if j.Output != "" {
		return j.resolve(j.Output)
	}
	in := j.InputPath()
	return filepath.Join(filepath.Dir(in), prefix+filepath.Base(in))
}

func (j *Job) resolve(p string) string {
	if filepath.IsAbs(p) || j.path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(j.path), p)
}
