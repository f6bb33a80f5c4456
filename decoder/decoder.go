// Package decoder runs operator-supplied JavaScript decode scripts. A script
// must define
//
//	function decode(topic, payload, timestamp) { return "..."; }
//
// where payload is an ArrayBuffer and timestamp is unix milliseconds. The
// script file is watched and hot-reloaded; a broken reload keeps the
// previous version. Results are memoized because pub/sub networks republish
// identical payloads at high rate.
package decoder

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/fsnotify/fsnotify"
	"github.com/maypok86/otter"
)

const cacheCapacity = 4096

type Script struct {
	mu      sync.Mutex
	vm      *goja.Runtime
	fn      goja.Callable
	path    string
	watcher *fsnotify.Watcher
	cache   otter.Cache[string, string]
}

// Load compiles the script at path and starts watching it for changes.
func Load(path string) (*Script, error) {
	cache, err := otter.MustBuilder[string, string](cacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build decode cache: %w", err)
	}

	s := &Script{
		path:  path,
		cache: cache,
	}

	if err := s.loadScript(); err != nil {
		return nil, fmt.Errorf("failed to load decoder script: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	s.watcher = watcher

	// Watch directory, not file - editors often replace files via rename
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch decoder directory: %w", err)
	}

	go s.watchLoop()

	return s, nil
}

func (s *Script) loadScript() error {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	prog, err := goja.Compile(s.path, string(content), true)
	if err != nil {
		return fmt.Errorf("failed to compile script: %w", err)
	}

	vm := goja.New()
	enableConsole(vm)

	if _, err := vm.RunProgram(prog); err != nil {
		return fmt.Errorf("failed to evaluate script: %w", err)
	}

	fn, ok := goja.AssertFunction(vm.Get("decode"))
	if !ok {
		return fmt.Errorf("script does not define a decode function")
	}

	s.mu.Lock()
	s.vm = vm
	s.fn = fn
	s.mu.Unlock()
	s.cache.Clear()

	slog.Info("loaded decoder script", "file", s.path)
	return nil
}

func (s *Script) watchLoop() {
	absPath, _ := filepath.Abs(s.path)

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			eventPath, _ := filepath.Abs(event.Name)
			if eventPath != absPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := s.loadScript(); err != nil {
					slog.Warn("failed to reload decoder (keeping previous)", "error", err)
				}
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("decoder file watcher error", "error", err)
		}
	}
}

// Decode satisfies engine.DecodeFunc. goja runtimes are single-threaded, so
// calls serialize on the script mutex; the cache keeps that cheap for
// repeated payloads.
func (s *Script) Decode(topic string, payload []byte, at time.Time) (string, error) {
	key := cacheKey(topic, payload)
	if text, ok := s.cache.Get(key); ok {
		return text, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.vm.NewArrayBuffer(payload)
	result, err := s.fn(goja.Undefined(), s.vm.ToValue(topic), s.vm.ToValue(buf), s.vm.ToValue(at.UnixMilli()))
	if err != nil {
		return "", err
	}

	text := result.String()
	s.cache.Set(key, text)
	return text, nil
}

func (s *Script) Close() {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	s.cache.Close()
}

func cacheKey(topic string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return topic + "\x00" + hex.EncodeToString(sum[:16])
}
