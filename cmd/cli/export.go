package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/himanishpuri/SimilarityRater/pkg/models"
	"github.com/himanishpuri/SimilarityRater/pkg/rater"
	"github.com/himanishpuri/SimilarityRater/pkg/utils"
)

var errExportLocked = errors.New("export file is in use by another rater")

// exportFile is a judgment export held under an advisory lock so two
// raters never write the same file.
type exportFile struct {
	path string
	lock *flock.Flock
}

func openExport(path string) (*exportFile, error) {
	if err := utils.MakeDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", errExportLocked, path)
	}
	return &exportFile{path: path, lock: lock}, nil
}

// Write replaces the export atomically.
func (e *exportFile) Write(js []models.Judgment) error {
	data, err := rater.MarshalJudgments(js)
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(e.path, data)
}

func (e *exportFile) Close() error {
	return e.lock.Unlock()
}
