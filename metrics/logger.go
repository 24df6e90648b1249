package metrics

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Logger interface {
	Log(info *MetricsInfo)
}

type StdoutLogger struct{}

func NewStdoutLogger() *StdoutLogger {
	return &StdoutLogger{}
}

func (l *StdoutLogger) Log(info *MetricsInfo) {
	infoStr, err := info.ToJSON()
	if err != nil {
		log.Printf("StdoutLogger: error: %v", err)
		return
	}
	log.Print(infoStr)
}

const (
	defaultQueueSize      = 2000
	defaultLogWriters     = 2
	defaultMaxLogFileSize = 1024 * 1024 * 1024
	defaultMaxLogFiles    = 10
)

// FileLogger writes metrics lines to LogDir/metrics<N>.log, one file per
// writer goroutine. A file is rotated to metrics<N>.log.<K> once it
// reaches MaxLogFileSize, keeping at most MaxLogFiles rotated files.
type FileLogger struct {
	MetricsQueue   chan *MetricsInfo
	LogDir         string
	MaxLogFileSize int64
	MaxLogFiles    int
	Verbose        bool

	wg sync.WaitGroup
}

func NewFileLogger(logDir string, maxLogFileSize int64, maxLogFiles int, verbose bool) *FileLogger {
	if maxLogFileSize <= 0 {
		maxLogFileSize = defaultMaxLogFileSize
	}
	if maxLogFiles <= 0 {
		maxLogFiles = defaultMaxLogFiles
	}
	logger := &FileLogger{
		MetricsQueue:   make(chan *MetricsInfo, defaultQueueSize),
		LogDir:         logDir,
		MaxLogFileSize: maxLogFileSize,
		MaxLogFiles:    maxLogFiles,
		Verbose:        verbose,
	}

	logger.wg.Add(defaultLogWriters)
	for i := 0; i < defaultLogWriters; i++ {
		go logger.writeLoop(i)
	}

	return logger
}

func (l *FileLogger) Log(info *MetricsInfo) {
	l.MetricsQueue <- info
}

// Close drains the queue and waits for the writers to finish.
func (l *FileLogger) Close() {
	close(l.MetricsQueue)
	l.wg.Wait()
}

func (l *FileLogger) writeLoop(idx int) {
	defer l.wg.Done()

	f, err := l.openLogFile(idx)
	if err != nil {
		log.Printf("FileLogger%d: log open error: %v", idx, err)
	}
	defer func() {
		if f != nil {
			f.Close()
		}
	}()

	for info := range l.MetricsQueue {
		infoStr, err := info.ToJSON()
		if err != nil {
			log.Printf("FileLogger%d: info.ToJSON() error: %v", idx, err)
			continue
		}

		f = l.rotateIfFull(f, idx)
		if f == nil {
			continue
		}
		if _, err := f.WriteString(infoStr); err != nil {
			log.Printf("FileLogger%d: write error: %v", idx, err)
			continue
		}
		f.Sync()
	}
}

func (l *FileLogger) logFilePath(idx int) string {
	return filepath.Join(l.LogDir, fmt.Sprintf("metrics%d.log", idx))
}

func (l *FileLogger) openLogFile(idx int) (*os.File, error) {
	return os.OpenFile(l.logFilePath(idx), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// rotateIfFull returns the file the next line should go to, or nil if no
// file could be opened.
func (l *FileLogger) rotateIfFull(curr *os.File, idx int) *os.File {
	if curr == nil {
		f, err := l.openLogFile(idx)
		if err != nil {
			log.Printf("FileLogger%d: log open error: %v", idx, err)
			return nil
		}
		return f
	}

	info, err := curr.Stat()
	if err != nil {
		log.Printf("FileLogger%d: log rotation error: %v", idx, err)
		return curr
	}
	if info.Size() < l.MaxLogFileSize {
		return curr
	}

	target, err := l.rotationTarget(idx)
	if err != nil {
		log.Printf("FileLogger%d: log rotation error: %v", idx, err)
		return curr
	}

	curr.Close()
	if err := os.Rename(l.logFilePath(idx), target); err != nil {
		log.Printf("FileLogger%d: log rotation error: %v", idx, err)
	} else if l.Verbose {
		log.Printf("FileLogger%d: log file rotated: %v", idx, target)
	}

	f, err := l.openLogFile(idx)
	if err != nil {
		log.Printf("FileLogger%d: log open error: %v", idx, err)
		return nil
	}
	return f
}

// rotationTarget picks the first free rotated file name, or the oldest
// rotated file once MaxLogFiles of them exist.
func (l *FileLogger) rotationTarget(idx int) (string, error) {
	base := filepath.Base(l.logFilePath(idx))
	for i := 0; i < l.MaxLogFiles; i++ {
		p := filepath.Join(l.LogDir, fmt.Sprintf("%s.%d", base, i))
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p, nil
		}
	}

	files, err := ioutil.ReadDir(l.LogDir)
	if err != nil {
		return "", err
	}

	var oldest os.FileInfo
	for _, file := range files {
		if !file.Mode().IsRegular() || !strings.HasPrefix(file.Name(), base+".") {
			continue
		}
		if oldest == nil || file.ModTime().Before(oldest.ModTime()) {
			oldest = file
		}
	}

	target := filepath.Join(l.LogDir, base+".0")
	if oldest != nil {
		target = filepath.Join(l.LogDir, oldest.Name())
	}
	if l.Verbose {
		log.Printf("FileLogger%d: maximum number of log files reached, overwriting %s", idx, target)
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return "", err
	}
	return target, nil
}
