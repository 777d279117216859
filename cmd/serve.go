// cmd/serve.go
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const debounceDuration = 500 * time.Millisecond

var serverPort int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and rebuilds on changes",
	Long: `The serve command performs an initial build, then serves the output
directory over HTTP. The input CSV, the page template, the content directory
and the static directory are watched and the site is rebuilt on change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := runBuildProcess(appConfig); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()

		rb := &rebuilder{build: func() error {
			_, err := runBuildProcess(appConfig)
			return err
		}}
		go rb.watch(watcher)

		for _, rootPath := range watchPaths() {
			addRecursive(watcher, rootPath)
		}

		serverAddr := fmt.Sprintf(":%d", serverPort)
		logger.Info("Serving site",
			zap.String("dir", appConfig.OutputDir),
			zap.String("url", "http://localhost"+serverAddr))

		if err := http.ListenAndServe(serverAddr, noCache(appConfig.OutputDir)); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	},
}

// rebuilder debounces change events into serialized builds.
type rebuilder struct {
	build func() error

	mu    sync.Mutex
	timer *time.Timer
}

func (rb *rebuilder) watch(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					logger.Warn("Failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
				}
			}
			rb.schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

func (rb *rebuilder) schedule() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.timer != nil {
		rb.timer.Stop()
	}
	rb.timer = time.AfterFunc(debounceDuration, rb.run)
}

func (rb *rebuilder) run() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	logger.Info("Rebuilding site due to changes")
	if err := rb.build(); err != nil {
		logger.Error("Rebuild failed", zap.Error(err))
	}
}

// watchPaths lists the inputs of a build. The output directory is never
// watched since every build writes to it.
func watchPaths() []string {
	paths := []string{filepath.Dir(appConfig.InputFile)}
	if appConfig.TemplateFile != "" {
		paths = append(paths, filepath.Dir(appConfig.TemplateFile))
	}
	if appConfig.ContentDir != "" {
		paths = append(paths, appConfig.ContentDir)
	}
	if appConfig.StaticDir != "" {
		paths = append(paths, appConfig.StaticDir)
	}
	return paths
}

func addRecursive(watcher *fsnotify.Watcher, rootPath string) {
	if _, err := os.Stat(rootPath); os.IsNotExist(err) {
		logger.Debug("Directory not found, not watching", zap.String("path", rootPath))
		return
	}
	err := filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Error walking directory", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if filepath.Clean(path) == filepath.Clean(appConfig.OutputDir) {
				return filepath.SkipDir
			}
			if watchErr := watcher.Add(path); watchErr != nil {
				logger.Warn("Failed to watch directory", zap.String("path", path), zap.Error(watchErr))
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("Error setting up watch", zap.String("path", rootPath), zap.Error(err))
	}
}

// noCache serves dir without directory listings and with caching disabled.
func noCache(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(r.URL.Path), "index.html")); os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fs.ServeHTTP(w, r)
	})
}

// Helper function to check if a path is a directory
func isDir(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
