package debug

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitDisabledIsNoop(t *testing.T) {
	resetForTest()

	if err := Init(false); err != nil {
		t.Fatalf("Init(false) failed: %v", err)
	}
	if Enabled() {
		t.Fatalf("Enabled() should be false")
	}

	Log("dropped")
	Logf("dropped %d", 1)
	For("chart").Logf("dropped %s", "scoped")
	For("chart").Since("relayout", time.Now())
}

func TestScopedMessagesReachLogFile(t *testing.T) {
	logPath := useTempLog(t)

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}

	Log("plain message")
	For("task").Logf("dropped %q: bad start", "T1")
	For("chart").Since("relayout", time.Now().Add(-time.Millisecond))

	content := readLog(t, logPath)
	for _, want := range []string{
		"gantry debug log started",
		"plain message",
		`[task] dropped "T1": bad start`,
		"[chart] relayout took",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestInitTruncatesExistingLog(t *testing.T) {
	logPath := useTempLog(t)

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(logPath, []byte("stale session\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}

	content := readLog(t, logPath)
	if strings.Contains(content, "stale session") {
		t.Fatalf("expected previous log to be truncated")
	}
}

func TestCloseIsRepeatable(t *testing.T) {
	useTempLog(t)

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}
	Close()
	Close()
}

func TestGetLogPathUsesGantryDir(t *testing.T) {
	path, err := GetLogPath()
	if err != nil {
		t.Fatalf("GetLogPath() failed: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join(LogDirName, LogFileName)) {
		t.Fatalf("GetLogPath() = %q, want suffix %q", path, filepath.Join(LogDirName, LogFileName))
	}
}

func useTempLog(t *testing.T) string {
	t.Helper()
	resetForTest()

	logPath := filepath.Join(t.TempDir(), LogDirName, LogFileName)
	orig := getLogPath
	getLogPath = func() (string, error) { return logPath, nil }
	t.Cleanup(func() {
		getLogPath = orig
		Close()
		resetForTest()
	})
	return logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func resetForTest() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	enabled = false
	logger = log.New(io.Discard, "", 0)
}
