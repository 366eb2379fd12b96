package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	godaemon "github.com/sevlyar/go-daemon"
	"github.com/spf13/viper"

	"github.com/mvickers/driftscreen/internal/cli/cmd/utils"
	"github.com/mvickers/driftscreen/internal/ipc"
	"github.com/mvickers/driftscreen/internal/screensaver"
)

// StartManager scans the image directory, starts the control socket, and
// runs the screensaver loop on the calling (main) thread until stopped.
func StartManager() {
	if viper.GetBool("background") && os.Getenv("DRIFTSCREEN_DAEMON") != "1" {
		daemonize()
		return
	}
	if os.Getenv("DRIFTSCREEN_DAEMON") == "1" {
		setupRotatingLogger()
	}

	log.Infof("StartManager() started in PID: %d", os.Getpid())

	if _, err := ipc.SendStatus(); err == nil {
		log.Infof("driftscreen is already running, exiting")
		os.Exit(0)
	}

	log.Info("Searching for images ...")
	imagePaths := scanImages(utils.CanonicalPath(viper.GetString("wallpapers")))
	if len(imagePaths) == 0 {
		log.Fatal("No images found in the specified directory.")
	}

	log.Infof("Found %d images in %s", len(imagePaths), viper.GetString("wallpapers"))
	log.Infof("Shuffle: %v", viper.GetBool("shuffle"))

	manager := screensaver.NewManager(imagePaths)

	go func() {
		log.Infof("Starting socket server")
		ipc.Start(manager)
	}()

	if err := manager.Run(); err != nil {
		log.Fatalf("screensaver failed: %v", err)
	}

	os.Remove(ipc.SocketPath())
	log.Infof("driftscreen exited")
}

// scanImages returns the supported image files directly under dir.
func scanImages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("Error reading images directory: %v", err)
	}

	paths := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths
}

// daemonize forks the process into the background. The child re-enters
// StartManager with DRIFTSCREEN_DAEMON set.
func daemonize() {
	ctx := &godaemon.Context{
		PidFileName: filepath.Join(stateDir(), "driftscreen.pid"),
		PidFilePerm: 0644,
		Env:         append(os.Environ(), "DRIFTSCREEN_DAEMON=1"),
	}

	child, err := ctx.Reborn()
	if err != nil {
		log.Fatalf("failed to daemonize: %v", err)
	}
	if child != nil {
		log.Infof("driftscreen started in background, PID %d", child.Pid)
		return
	}
	defer ctx.Release()

	StartManager()
}

func stateDir() string {
	home := os.Getenv("HOME")
	dir := filepath.Join(home, ".local", "share", "driftscreen")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warnf("cannot create %s: %v", dir, err)
		return os.TempDir()
	}
	return dir
}

func setupRotatingLogger() {
	logPath := filepath.Join(stateDir(), "driftscreen.log")

	writer, err := rotatelogs.New(
		logPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationSize(10*1024*1024),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Fatalf("failed to configure log rotation: %v", err)
	}

	log.SetOutput(writer)
	log.SetLevel(log.InfoLevel)
}
