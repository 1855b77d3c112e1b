package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

const logDir = "logs"

type writerHook struct {
	Writer    []io.Writer
	LogLevels []logrus.Level
}

func (hook *writerHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	for _, w := range hook.Writer {
		_, _ = w.Write([]byte(line))
	}
	return err
}

func (hook *writerHook) Levels() []logrus.Level {
	return hook.LogLevels
}

type Logger struct {
	*logrus.Entry
}

var (
	e    *logrus.Entry
	once sync.Once
)

func GetLogger() *Logger {
	once.Do(initLogger)
	return &Logger{e}
}

func (l *Logger) GetLoggerWithField(k string, v interface{}) *Logger {
	return &Logger{l.WithField(k, v)}
}

// SetDebug switches the process logger between Debug and Info level.
func SetDebug(debug bool) {
	once.Do(initLogger)
	if debug {
		e.Logger.SetLevel(logrus.DebugLevel)
	} else {
		e.Logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput replaces the hook writers, tests use it to silence or capture logs.
func SetOutput(w ...io.Writer) {
	once.Do(initLogger)
	for _, hooks := range e.Logger.Hooks {
		for _, h := range hooks {
			if wh, ok := h.(*writerHook); ok {
				wh.Writer = w
			}
		}
	}
}

func initLogger() {
	l := logrus.New()
	l.SetReportCaller(true)
	l.Formatter = &logrus.TextFormatter{
		CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
			filename := path.Base(frame.File)
			return fmt.Sprintf("%s()", frame.Function), fmt.Sprintf("%s:%d", filename, frame.Line)
		},
		DisableColors: true,
		FullTimestamp: true,
	}

	writers := []io.Writer{os.Stdout}
	if err := os.MkdirAll(logDir, 0770); err == nil {
		allFile, err := os.OpenFile(path.Join(logDir, "all.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err == nil {
			writers = append(writers, allFile)
		} else {
			fmt.Println(err)
		}
	} else {
		fmt.Println(err)
	}

	l.SetOutput(io.Discard)
	l.AddHook(&writerHook{
		Writer:    writers,
		LogLevels: logrus.AllLevels,
	})
	l.SetLevel(logrus.InfoLevel)

	e = logrus.NewEntry(l)
}
