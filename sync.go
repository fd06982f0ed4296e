package main

import (
	"os"
	"time"
)

// SyncResult holds the outcome of a single sync verification run.
type SyncResult struct {
	MissingFiles  int // files on disk but not in the project
	StaleFiles    int // mirrored files no longer on disk
	ModifiedFiles int // files whose disk ModTime differs from the loaded one
	Duration      time.Duration
}

// Discrepancies returns the total number of repaired files.
func (r SyncResult) Discrepancies() int {
	return r.MissingFiles + r.StaleFiles + r.ModifiedFiles
}

// runPeriodicSync verifies the mirror at the given interval until stop is closed.
func (m *mirror) runPeriodicSync(intervalSeconds int, stop <-chan struct{}) {
	interval := time.Duration(intervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("periodic sync started", "intervalSeconds", intervalSeconds)

	for {
		select {
		case <-stop:
			m.logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			result := m.verify()
			if result.Discrepancies() > 0 {
				m.logger.Info("sync verification complete",
					"missing", result.MissingFiles,
					"stale", result.StaleFiles,
					"modified", result.ModifiedFiles,
					"duration", result.Duration,
				)
			} else {
				m.logger.Debug("sync verification complete, project is in sync", "duration", result.Duration)
			}
		}
	}
}

// verify compares the directory with the mirrored files and repairs any drift.
// Files deleted through the tools are skipped until their disk copy is modified.
func (m *mirror) verify() SyncResult {
	start := time.Now()
	var result SyncResult

	type diskFile struct {
		absolutePath string
		info         os.FileInfo
	}
	diskFiles := make(map[string]diskFile) // key: canonical path
	m.walk(func(path string, info os.FileInfo) {
		canonical, err := m.canonicalPath(path)
		if err != nil {
			return
		}
		diskFiles[canonical] = diskFile{absolutePath: path, info: info}
	})

	tracked := m.tracked()
	present := make(map[string]bool)
	for _, path := range m.project.ListFiles() {
		present[path] = true
	}

	for canonical, file := range diskFiles {
		if m.isDropped(canonical, file.info.ModTime()) {
			continue
		}
		modTime, isTracked := tracked[canonical]
		switch {
		case !isTracked || !present[canonical]:
			if _, err := m.loadFile(file.absolutePath, file.info); err != nil {
				m.logger.Debug("sync: skipped missing file", "path", canonical, "error", err)
				continue
			}
			m.logger.Info("sync: loaded missing file", "path", canonical)
			result.MissingFiles++

		case !file.info.ModTime().Equal(modTime):
			if _, err := m.loadFile(file.absolutePath, file.info); err != nil {
				m.logger.Debug("sync: skipped modified file", "path", canonical, "error", err)
				continue
			}
			m.logger.Info("sync: reloaded modified file", "path", canonical)
			result.ModifiedFiles++
		}
	}

	for canonical := range tracked {
		if _, onDisk := diskFiles[canonical]; !onDisk {
			m.remove(canonical)
			m.logger.Info("sync: removed stale file", "path", canonical)
			result.StaleFiles++
		}
	}

	m.mu.Lock()
	for canonical := range m.dropped {
		if _, onDisk := diskFiles[canonical]; !onDisk {
			delete(m.dropped, canonical)
		}
	}
	m.mu.Unlock()

	result.Duration = time.Since(start)
	return result
}
