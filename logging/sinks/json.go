package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"

	"blockstead/server/logging"
)

// JSONSink appends one JSON document per event to a file.
type JSONSink struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

func NewJSONSink(path string) (*JSONSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONSink{file: file, w: bufio.NewWriter(file)}, nil
}

func (s *JSONSink) Write(event logging.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

func (s *JSONSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
