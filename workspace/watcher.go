package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileWatcher polls the workspace root for greet documents that were
// created, modified or deleted outside the editor.
type FileWatcher struct {
	workspace    *Workspace
	stopCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time
	onChange     func(uri string)
}

func NewFileWatcher(w *Workspace, interval time.Duration, onChange func(uri string)) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		workspace:    w,
		stopCh:       make(chan struct{}),
		pollInterval: interval,
		modTimes:     make(map[string]time.Time),
		onChange:     onChange,
	}
}

func (fw *FileWatcher) Start() {
	go fw.run()
}

func (fw *FileWatcher) Stop() {
	close(fw.stopCh)
}

func (fw *FileWatcher) run() {
	ticker := time.NewTicker(fw.pollInterval)
	defer ticker.Stop()

	fw.Poll()

	for {
		select {
		case <-fw.stopCh:
			return
		case <-ticker.C:
			fw.Poll()
		}
	}
}

// Poll rescans the root once and returns the URIs of the documents that
// changed.
func (fw *FileWatcher) Poll() []string {
	current := make(map[string]bool)
	var changed []string
	root := fw.workspace.RootDir()

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != Extension {
			return nil
		}

		current[path] = true

		lastMod, known := fw.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			fw.modTimes[path] = info.ModTime()
			if doc, err := fw.workspace.ScanFile(path); err == nil && !doc.Open {
				changed = append(changed, doc.URI)
			}
		}
		return nil
	})

	for path := range fw.modTimes {
		if !current[path] {
			delete(fw.modTimes, path)
			fw.workspace.RemoveFile(path)
			changed = append(changed, pathToURI(path))
		}
	}

	if fw.onChange != nil {
		for _, uri := range changed {
			fw.onChange(uri)
		}
	}
	return changed
}
