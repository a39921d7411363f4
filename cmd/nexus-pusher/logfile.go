package main

import (
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// fileSink is a zapcore.WriteSyncer that discards writes until Open points
// it at a rotating log file.
type fileSink struct {
	mu sync.Mutex
	lj *lumberjack.Logger
}

// Open starts writing to path, rotating at 10 MB and keeping three backups
// for up to 28 days.
func (s *fileSink) Open(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lj != nil {
		_ = s.lj.Close()
	}
	s.lj = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		LocalTime:  true,
	}
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lj == nil {
		return len(p), nil
	}
	return s.lj.Write(p)
}

func (s *fileSink) Sync() error { return nil }

// Close closes the current log file, if any.
func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lj == nil {
		return nil
	}
	err := s.lj.Close()
	s.lj = nil
	return err
}
