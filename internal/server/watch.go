package server

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 500 * time.Millisecond

// watchSet is what a watcher registers and which events it acts on.
type watchSet struct {
	dirs  []string        // registered with fsnotify
	trees []string        // directories watched recursively
	files map[string]bool // single files, watched through their parent
}

// newWatchSet expands paths. Directories are walked recursively. A file
// contributes only its parent directory, without recursion, so a content file
// in the project root does not pull in build output or .git.
func (s *Server) newWatchSet(paths []string) *watchSet {
	set := &watchSet{files: map[string]bool{}}
	seen := map[string]bool{}
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			set.dirs = append(set.dirs, dir)
		}
	}

	for _, root := range paths {
		root = filepath.Clean(root)
		info, err := os.Stat(root)
		if err != nil {
			s.logger.Warn("not watching", "path", root, "err", err)
			continue
		}
		if !info.IsDir() {
			// Editors replace files by rename, which drops a watch on the
			// file itself; watch its directory instead.
			set.files[root] = true
			add(filepath.Dir(root))
			continue
		}
		set.trees = append(set.trees, root)
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Warn("walking watch path", "path", path, "err", err)
				return nil
			}
			if d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			s.logger.Warn("walking watch path", "path", root, "err", err)
		}
	}
	return set
}

// inTree reports whether name lies inside one of the recursive roots.
func (set *watchSet) inTree(name string) bool {
	name = filepath.Clean(name)
	for _, tree := range set.trees {
		if name == tree || strings.HasPrefix(name, tree+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (set *watchSet) relevant(name string) bool {
	return set.files[filepath.Clean(name)] || set.inTree(name)
}

// watch reloads the snapshot whenever something under paths changes. Each
// path may be a file or a directory; directories are watched recursively.
// The returned func stops the watcher.
func (s *Server) watch(ctx context.Context, paths []string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	set := s.newWatchSet(paths)
	for _, dir := range set.dirs {
		if err := watcher.Add(dir); err != nil {
			s.logger.Warn("failed to watch", "path", dir, "err", err)
		}
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
		done  = make(chan struct{})
	)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				if !set.relevant(event.Name) {
					continue
				}
				s.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
				if event.Has(fsnotify.Create) && set.inTree(event.Name) && isDir(event.Name) {
					if err := watcher.Add(event.Name); err != nil {
						s.logger.Warn("failed to watch", "path", event.Name, "err", err)
					}
				}

				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() {
					if err := s.Reload(); err != nil {
						s.logger.Error("reload failed, keeping previous site", "err", err)
						return
					}
					s.logger.Info("site reloaded")
				})
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("watcher error", "err", err)
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			_ = watcher.Close()
		})
	}
	return stop, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
